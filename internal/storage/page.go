package storage

import (
	"fmt"

	"github.com/tuannm99/lhindex/internal/record"
	"github.com/tuannm99/lhindex/pkg/bx"
)

// offset Size Field
// 0      4    overflowNext (int32, -1 = end of chain)
// 4      4    recordCount  (records in this page, not the chain)
// 8      n    packed records, insertion order
//
// Bytes past the last record are undefined; recordCount is authoritative.
const (
	offNext  = 0
	offCount = 4
)

// Page is a decoded view of one on-disk page. It is a value type over
// its own buffer: mutating a Page never touches the file until the
// buffer is written back through the Pager.
type Page struct {
	Buf []byte
}

// NewPage returns an empty page with a fresh header (no overflow,
// zero records).
func NewPage() Page {
	p := Page{Buf: make([]byte, PageSize)}
	p.SetNext(NoOverflow)
	return p
}

func (p Page) Next() int32       { return bx.I32At(p.Buf, offNext) }
func (p Page) SetNext(n int32)   { bx.PutI32At(p.Buf, offNext, n) }
func (p Page) Count() uint32     { return bx.U32At(p.Buf, offCount) }
func (p Page) SetCount(c uint32) { bx.PutU32At(p.Buf, offCount, c) }

// Records decodes exactly Count records starting at the header
// boundary.
func (p Page) Records() ([]record.Record, error) {
	count := int(p.Count())
	out := make([]record.Record, 0, count)
	off := HeaderSize
	for k := 0; k < count; k++ {
		if off >= PageSize {
			return nil, fmt.Errorf("%w: record %d starts past page end", ErrPageCorrupted, k)
		}
		r, n, err := record.Decode(p.Buf[off:])
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrPageCorrupted, k, err)
		}
		out = append(out, r)
		off += n
	}
	return out, nil
}

// UsedBytes is the next free body offset: header plus the encoded
// size of every record in the page.
func (p Page) UsedBytes() (int, error) {
	recs, err := p.Records()
	if err != nil {
		return 0, err
	}
	used := HeaderSize
	for _, r := range recs {
		used += r.EncodedSize()
	}
	return used, nil
}

// Append packs one encoded record at the current free offset and bumps
// the header count. ErrPageFull when the record does not fit.
func (p Page) Append(enc []byte) error {
	used, err := p.UsedBytes()
	if err != nil {
		return err
	}
	if used+len(enc) > PageSize {
		return ErrPageFull
	}
	copy(p.Buf[used:], enc)
	p.SetCount(p.Count() + 1)
	return nil
}
