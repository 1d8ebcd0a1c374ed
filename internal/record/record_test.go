package record

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	recs := []Record{
		{ID: 7, Name: "A", Bio: "B", ManagerID: 0},
		{ID: -42, Name: "", Bio: "", ManagerID: -1},
		{ID: 1<<62 + 3, Name: "Grace Hopper", Bio: "compilers, COBOL", ManagerID: 99},
	}

	for _, want := range recs {
		enc, err := Encode(want)
		require.NoError(t, err)
		assert.Len(t, enc, want.EncodedSize())

		got, n, err := Decode(enc)
		require.NoError(t, err)
		assert.Equal(t, len(enc), n)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("record mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestDecodePackedSequence(t *testing.T) {
	a := Record{ID: 1, Name: "a", Bio: "aa", ManagerID: 2}
	b := Record{ID: 3, Name: "bbb", Bio: "b", ManagerID: 4}

	encA, err := Encode(a)
	require.NoError(t, err)
	encB, err := Encode(b)
	require.NoError(t, err)
	buf := append(encA, encB...)

	got, n, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, a, got)

	got, _, err = Decode(buf[n:])
	require.NoError(t, err)
	assert.Equal(t, b, got)
}

func TestEncodedSize(t *testing.T) {
	r := Record{ID: 1, Name: "abc", Bio: "defgh", ManagerID: 2}
	// 16 fixed + 3 + 5 + 4 delimiters
	assert.Equal(t, 28, r.EncodedSize())
}

func TestEncodeRejectsDelimiterInText(t *testing.T) {
	_, err := Encode(Record{ID: 1, Name: "a~b", Bio: "x", ManagerID: 0})
	require.ErrorIs(t, err, ErrFieldHasDelim)

	_, err = Encode(Record{ID: 1, Name: "ok", Bio: "line\nbreak", ManagerID: 0})
	require.ErrorIs(t, err, ErrFieldHasDelim)
}

func TestDecodeMalformed(t *testing.T) {
	good, err := Encode(Record{ID: 5, Name: "n", Bio: "b", ManagerID: 6})
	require.NoError(t, err)

	cases := map[string][]byte{
		"empty":              {},
		"too short":          good[:10],
		"bad id delimiter":   mutate(good, 8, 'x'),
		"missing trailer":    good[:len(good)-1],
		"unterminated texts": append(append([]byte(nil), good[:9]...), []byte(strings.Repeat("q", 30))...),
	}
	for name, buf := range cases {
		_, _, err := Decode(buf)
		assert.ErrorIs(t, err, ErrMalformed, name)
	}
}

func mutate(b []byte, off int, v byte) []byte {
	out := append([]byte(nil), b...)
	out[off] = v
	return out
}
