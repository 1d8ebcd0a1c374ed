package record

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tuannm99/lhindex/pkg/bx"
)

// Delim separates the fields of an encoded record. It may not appear
// inside Name or Bio; producers must reject such input.
const Delim = byte('~')

const (
	idSize      = 8
	fixedSize   = idSize * 2 // id + manager_id
	delimCount  = 4
	minimumSize = fixedSize + delimCount
)

var (
	ErrMalformed     = errors.New("record: malformed record bytes")
	ErrFieldHasDelim = errors.New("record: text field contains delimiter or newline")
)

// Record is one employee row keyed by ID.
type Record struct {
	ID        int64
	Name      string
	Bio       string
	ManagerID int64
}

// EncodedSize is the exact on-disk size of the record:
// two 8-byte integers, both text fields, four delimiters.
func (r Record) EncodedSize() int {
	return fixedSize + len(r.Name) + len(r.Bio) + delimCount
}

// Validate rejects text fields the wire format cannot carry.
func (r Record) Validate() error {
	for _, s := range []string{r.Name, r.Bio} {
		if strings.IndexByte(s, Delim) >= 0 || strings.IndexByte(s, '\n') >= 0 {
			return ErrFieldHasDelim
		}
	}
	return nil
}

// Encode serializes r as:
//
//	id(8 LE) '~' name '~' bio '~' manager_id(8 LE) '~'
func Encode(r Record) ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	out := make([]byte, 0, r.EncodedSize())
	var b [idSize]byte

	bx.PutI64(b[:], r.ID)
	out = append(out, b[:]...)
	out = append(out, Delim)
	out = append(out, r.Name...)
	out = append(out, Delim)
	out = append(out, r.Bio...)
	out = append(out, Delim)
	bx.PutI64(b[:], r.ManagerID)
	out = append(out, b[:]...)
	out = append(out, Delim)
	return out, nil
}

// Decode reads one record from the start of buf and reports how many
// bytes it consumed, so callers can walk a packed sequence.
func Decode(buf []byte) (Record, int, error) {
	if len(buf) < minimumSize {
		return Record{}, 0, ErrMalformed
	}

	var r Record
	off := 0

	r.ID = bx.I64(buf[off:])
	off += idSize
	if buf[off] != Delim {
		return Record{}, 0, fmt.Errorf("%w: missing delimiter after id", ErrMalformed)
	}
	off++

	name, n, err := readText(buf[off:])
	if err != nil {
		return Record{}, 0, fmt.Errorf("%w: unterminated name", ErrMalformed)
	}
	r.Name = name
	off += n

	bio, n, err := readText(buf[off:])
	if err != nil {
		return Record{}, 0, fmt.Errorf("%w: unterminated bio", ErrMalformed)
	}
	r.Bio = bio
	off += n

	if len(buf) < off+idSize+1 {
		return Record{}, 0, fmt.Errorf("%w: truncated manager_id", ErrMalformed)
	}
	r.ManagerID = bx.I64(buf[off:])
	off += idSize
	if buf[off] != Delim {
		return Record{}, 0, fmt.Errorf("%w: missing trailing delimiter", ErrMalformed)
	}
	off++

	return r, off, nil
}

// readText consumes bytes up to and including the next delimiter and
// returns the text plus total bytes consumed.
func readText(buf []byte) (string, int, error) {
	for i := 0; i < len(buf); i++ {
		if buf[i] == Delim {
			return string(buf[:i]), i + 1, nil
		}
	}
	return "", 0, ErrMalformed
}

func (r Record) String() string {
	return fmt.Sprintf("id=%d name=%q bio=%q manager_id=%d", r.ID, r.Name, r.Bio, r.ManagerID)
}
