package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/lhindex/internal/record"
)

func encode(t *testing.T, r record.Record) []byte {
	t.Helper()
	enc, err := record.Encode(r)
	require.NoError(t, err)
	return enc
}

func TestNewPageHeader(t *testing.T) {
	p := NewPage()

	assert.Equal(t, NoOverflow, p.Next())
	assert.Equal(t, uint32(0), p.Count())
	assert.Equal(t, PageSize, len(p.Buf))

	used, err := p.UsedBytes()
	require.NoError(t, err)
	assert.Equal(t, HeaderSize, used)
}

func TestPageAppendAndRecords(t *testing.T) {
	p := NewPage()

	a := record.Record{ID: 1, Name: "ann", Bio: "first", ManagerID: 9}
	b := record.Record{ID: 2, Name: "bob", Bio: "second", ManagerID: 9}
	require.NoError(t, p.Append(encode(t, a)))
	require.NoError(t, p.Append(encode(t, b)))

	assert.Equal(t, uint32(2), p.Count())

	recs, err := p.Records()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, a, recs[0])
	assert.Equal(t, b, recs[1])

	used, err := p.UsedBytes()
	require.NoError(t, err)
	assert.Equal(t, HeaderSize+a.EncodedSize()+b.EncodedSize(), used)
}

func TestPageNextLink(t *testing.T) {
	p := NewPage()
	p.SetNext(17)
	assert.Equal(t, int32(17), p.Next())
	p.SetNext(NoOverflow)
	assert.Equal(t, NoOverflow, p.Next())
}

// A record whose encoded size equals the page body fits exactly; one
// byte more does not.
func TestPageExactFit(t *testing.T) {
	exact := record.Record{
		ID:        1,
		Name:      strings.Repeat("n", 1000),
		Bio:       strings.Repeat("b", BodySize-20-1000),
		ManagerID: 2,
	}
	require.Equal(t, BodySize, exact.EncodedSize())

	p := NewPage()
	require.NoError(t, p.Append(encode(t, exact)))

	used, err := p.UsedBytes()
	require.NoError(t, err)
	assert.Equal(t, PageSize, used)

	over := exact
	over.Bio += "x"
	require.ErrorIs(t, NewPage().Append(encode(t, over)), ErrPageFull)
}

func TestPageRecordsCorrupted(t *testing.T) {
	p := NewPage()
	p.SetCount(1) // claims a record that was never written

	_, err := p.Records()
	require.ErrorIs(t, err, ErrPageCorrupted)

	_, err = p.UsedBytes()
	require.ErrorIs(t, err, ErrPageCorrupted)
}
