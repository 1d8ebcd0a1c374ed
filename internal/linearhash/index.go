package linearhash

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/tuannm99/lhindex/internal/record"
	"github.com/tuannm99/lhindex/internal/storage"
)

// DefaultSplitThreshold is the chain utilisation above which the next
// unsplit bucket is split: three quarters of one page body per bucket.
const DefaultSplitThreshold = 0.75

// Index is a disk-resident linear hash table over employee records.
//
// Buckets 0..buckets-1 each own a chain of pages in the pager's file,
// rooted at dir[bucket]. level is the current address width in bits.
//
// Invariants after every insert:
//   - len(dir) == buckets, with 2^(level-1) < buckets <= 2^level
//     (except the initial level=1, buckets=2).
//   - every chain terminates within PageCount steps.
//   - every stored record rehashes to the bucket holding it.
type Index struct {
	pager *storage.Pager

	dir     []uint32 // bucket -> primary page number
	level   int      // i: address bits in use
	buckets int      // n: live buckets
	records uint64   // records inserted
	payload uint64   // sum of encoded record sizes

	// splitCursor is the next bucket to split, wrapping each time a
	// round of the directory completes.
	splitCursor int

	threshold float64
	metaPath  string

	closed atomic.Bool
}

// New creates a controller over an empty index file. Buckets are
// materialised lazily by the first insert.
func New(pager *storage.Pager, metaPath string, threshold float64) *Index {
	if threshold <= 0 {
		threshold = DefaultSplitThreshold
	}
	return &Index{
		pager:     pager,
		threshold: threshold,
		metaPath:  metaPath,
	}
}

// Open restores a controller from its meta sidecar. The sidecar is
// required: bucket order cannot be recovered from page bytes alone.
func Open(pager *storage.Pager, metaPath string, threshold float64) (*Index, error) {
	idx := New(pager, metaPath, threshold)
	if err := idx.loadMeta(); err != nil {
		return nil, err
	}
	return idx, nil
}

// Insert adds one record to the index, splitting the next unsplit
// bucket when utilisation crosses the threshold.
func (idx *Index) Insert(r record.Record) error {
	if err := idx.ensureOpen(); err != nil {
		return err
	}

	enc, err := record.Encode(r)
	if err != nil {
		return err
	}
	if len(enc) > storage.BodySize {
		return fmt.Errorf("%w: id=%d size=%d max=%d", ErrRecordTooLarge, r.ID, len(enc), storage.BodySize)
	}

	if idx.buckets == 0 {
		if err := idx.bootstrap(); err != nil {
			return err
		}
	}

	bucket := idx.bucketOf(r.ID)
	if err := idx.insertIntoBucket(bucket, enc); err != nil {
		return err
	}
	idx.records++
	idx.payload += uint64(len(enc))

	if idx.utilisation() > idx.threshold {
		if err := idx.split(); err != nil {
			return err
		}
	}
	return nil
}

// Lookup scans the chain of the record's bucket for id. ok is false
// when no record with that id was ever inserted.
func (idx *Index) Lookup(id int64) (record.Record, bool, error) {
	if err := idx.ensureOpen(); err != nil {
		return record.Record{}, false, err
	}
	if idx.buckets == 0 {
		return record.Record{}, false, nil
	}
	return idx.lookupInBucket(idx.bucketOf(id), id)
}

// bootstrap lays down the two initial primary pages and opens the
// address space at one bit.
func (idx *Index) bootstrap() error {
	for b := 0; b < 2; b++ {
		pageNum, err := idx.pager.AllocatePage()
		if err != nil {
			return err
		}
		idx.dir = append(idx.dir, pageNum)
	}
	idx.level = 1
	idx.buckets = 2
	slog.Debug("linearhash.bootstrap", "level", idx.level, "buckets", idx.buckets)
	return nil
}

// utilisation is the stored payload relative to one page body per
// bucket.
func (idx *Index) utilisation() float64 {
	if idx.buckets == 0 {
		return 0
	}
	return float64(idx.payload) / float64(idx.buckets*storage.BodySize)
}

// split converts the bucket at the split cursor into two real buckets
// by redistributing its chain under the widened addressing rule.
func (idx *Index) split() error {
	s := idx.splitCursor

	pages, recs, err := idx.bucketPages(s)
	if err != nil {
		return err
	}

	// Append the new bucket first so its primary page number precedes
	// any overflow pages the redistribution allocates.
	primary, err := idx.pager.AllocatePage()
	if err != nil {
		return err
	}
	idx.dir = append(idx.dir, primary)
	idx.buckets++
	if idx.buckets > 1<<uint(idx.level) {
		idx.level++
	}

	newBucket := idx.buckets - 1
	var stay, move []record.Record
	for _, r := range recs {
		if idx.bucketOf(r.ID) == s {
			stay = append(stay, r)
		} else {
			move = append(move, r)
		}
	}

	if err := idx.rewriteChain(pages, stay); err != nil {
		return err
	}
	if err := idx.rewriteChain([]uint32{primary}, move); err != nil {
		return err
	}

	idx.splitCursor++
	if idx.splitCursor == 1<<uint(idx.level-1) {
		idx.splitCursor = 0
	}

	slog.Debug("linearhash.split",
		"bucket", s,
		"newBucket", newBucket,
		"level", idx.level,
		"buckets", idx.buckets,
		"stayed", len(stay),
		"moved", len(move),
		"cursor", idx.splitCursor,
	)
	return nil
}

// Flush persists the meta sidecar and forces file writes to the OS.
func (idx *Index) Flush() error {
	if err := idx.ensureOpen(); err != nil {
		return err
	}
	if err := idx.saveMeta(); err != nil {
		return err
	}
	return idx.pager.Flush()
}

// Close flushes state and marks the controller unusable. The pager is
// left for the owner to close.
func (idx *Index) Close() error {
	if idx.closed.Swap(true) {
		return nil
	}
	if err := idx.saveMeta(); err != nil {
		return err
	}
	return idx.pager.Flush()
}

func (idx *Index) ensureOpen() error {
	if idx.closed.Load() {
		return ErrClosed
	}
	return nil
}

// Stats reports the controller's logical state.
type Stats struct {
	Level   int
	Buckets int
	Records uint64
	Pages   int
}

func (idx *Index) Stats() Stats {
	return Stats{
		Level:   idx.level,
		Buckets: idx.buckets,
		Records: idx.records,
		Pages:   idx.pager.PageCount(),
	}
}

// Directory returns a copy of the bucket -> primary page mapping.
func (idx *Index) Directory() []uint32 {
	return append([]uint32(nil), idx.dir...)
}
