package lhindex

import (
	"errors"
	"fmt"

	"github.com/tuannm99/lhindex/internal/linearhash"
	"github.com/tuannm99/lhindex/internal/record"
	"github.com/tuannm99/lhindex/internal/storage"
)

var (
	ErrIndexClosed = errors.New("lhindex: index is closed")
)

// Record is the row type stored in the index.
type Record = record.Record

// Stats mirrors the controller's logical state.
type Stats = linearhash.Stats

// Options tune an index handle. The zero value is usable.
type Options struct {
	// SplitThreshold overrides the default chain utilisation that
	// triggers a bucket split.
	SplitThreshold float64
}

// Index is a single-file linear hash index over employee records,
// addressed by id. One handle owns the file exclusively.
type Index struct {
	path  string
	pager *storage.Pager
	lh    *linearhash.Index
}

// Create builds a new, empty index file at path, truncating any
// previous contents (and ignoring any stale meta sidecar).
func Create(path string, opts Options) (*Index, error) {
	pager, err := storage.NewPager(path, true)
	if err != nil {
		return nil, err
	}
	lh := linearhash.New(pager, path+linearhash.MetaSuffix, opts.SplitThreshold)
	return &Index{path: path, pager: pager, lh: lh}, nil
}

// Open reopens an existing index from its file and meta sidecar.
func Open(path string, opts Options) (*Index, error) {
	pager, err := storage.NewPager(path, false)
	if err != nil {
		return nil, err
	}
	lh, err := linearhash.Open(pager, path+linearhash.MetaSuffix, opts.SplitThreshold)
	if err != nil {
		pager.Close()
		return nil, fmt.Errorf("open index %s: %w", path, err)
	}
	return &Index{path: path, pager: pager, lh: lh}, nil
}

// Insert adds one record. The id is assumed unique; inserting a
// duplicate id is unspecified.
func (x *Index) Insert(r Record) error {
	if x.lh == nil {
		return ErrIndexClosed
	}
	return x.lh.Insert(r)
}

// Lookup returns the record stored under id, with ok reporting
// whether it exists.
func (x *Index) Lookup(id int64) (Record, bool, error) {
	if x.lh == nil {
		return Record{}, false, ErrIndexClosed
	}
	return x.lh.Lookup(id)
}

// Stats reports the index's logical state.
func (x *Index) Stats() Stats {
	if x.lh == nil {
		return Stats{}
	}
	return x.lh.Stats()
}

// DebugString renders the controller state and bucket chains.
func (x *Index) DebugString() string {
	if x.lh == nil {
		return "(closed index)"
	}
	return x.lh.DebugString()
}

// Flush persists controller state and forces file writes to the OS.
func (x *Index) Flush() error {
	if x.lh == nil {
		return ErrIndexClosed
	}
	return x.lh.Flush()
}

// Close flushes state and releases the file handle.
func (x *Index) Close() error {
	if x.lh == nil {
		return nil
	}
	if err := x.lh.Close(); err != nil {
		x.pager.Close()
		return err
	}
	x.lh = nil
	return x.pager.Close()
}
