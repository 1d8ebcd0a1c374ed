package linearhash

import (
	"errors"
	"fmt"

	"github.com/tuannm99/lhindex/internal/record"
	"github.com/tuannm99/lhindex/internal/storage"
)

// chainIter walks a bucket's page chain from its primary page,
// following overflow links until the terminator. The step limit is
// the file's page count, so a corrupt cycle surfaces as an error
// instead of looping forever.
type chainIter struct {
	pager *storage.Pager
	next  int32
	steps int
	limit int
}

func (idx *Index) chain(bucket int) *chainIter {
	return &chainIter{
		pager: idx.pager,
		next:  int32(idx.dir[bucket]),
		limit: idx.pager.PageCount(),
	}
}

// Next loads the next page in the chain. done is true once the chain
// is exhausted.
func (it *chainIter) Next() (pageNum uint32, page storage.Page, done bool, err error) {
	if it.next == storage.NoOverflow {
		return 0, storage.Page{}, true, nil
	}
	if it.steps >= it.limit {
		return 0, storage.Page{}, false, ErrCorruptChain
	}
	it.steps++

	pageNum = uint32(it.next)
	page, err = it.pager.ReadPage(pageNum)
	if err != nil {
		return 0, storage.Page{}, false, err
	}
	it.next = page.Next()
	return pageNum, page, false, nil
}

// insertIntoBucket appends one encoded record to the first chain page
// with room, allocating a new overflow page only when no existing
// page fits.
func (idx *Index) insertIntoBucket(bucket int, enc []byte) error {
	it := idx.chain(bucket)
	for {
		pageNum, page, done, err := it.Next()
		if err != nil {
			return err
		}
		if done {
			return fmt.Errorf("linearhash: bucket %d has no terminal page", bucket)
		}

		used, err := page.UsedBytes()
		if err != nil {
			return fmt.Errorf("bucket %d page %d: %w", bucket, pageNum, err)
		}
		if used+len(enc) <= storage.PageSize {
			if err := page.Append(enc); err != nil {
				return err
			}
			return idx.pager.WritePage(pageNum, page)
		}

		if page.Next() != storage.NoOverflow {
			continue
		}

		// Chain is full everywhere: grow it by one overflow page.
		// The new page is written before the link to it.
		overflow := storage.NewPage()
		if err := overflow.Append(enc); err != nil {
			return err
		}
		overflowNum, err := idx.pager.AllocatePage()
		if err != nil {
			return err
		}
		if err := idx.pager.WritePage(overflowNum, overflow); err != nil {
			return err
		}
		page.SetNext(int32(overflowNum))
		return idx.pager.WritePage(pageNum, page)
	}
}

// lookupInBucket scans the bucket's chain linearly for id.
func (idx *Index) lookupInBucket(bucket int, id int64) (record.Record, bool, error) {
	it := idx.chain(bucket)
	for {
		pageNum, page, done, err := it.Next()
		if err != nil {
			return record.Record{}, false, err
		}
		if done {
			return record.Record{}, false, nil
		}

		recs, err := page.Records()
		if err != nil {
			return record.Record{}, false, fmt.Errorf("bucket %d page %d: %w", bucket, pageNum, err)
		}
		for _, r := range recs {
			if r.ID == id {
				return r, true, nil
			}
		}
	}
}

// bucketPages collects the page numbers and records of one bucket's
// chain, in chain order.
func (idx *Index) bucketPages(bucket int) ([]uint32, []record.Record, error) {
	var pages []uint32
	var recs []record.Record

	it := idx.chain(bucket)
	for {
		pageNum, page, done, err := it.Next()
		if err != nil {
			return nil, nil, err
		}
		if done {
			return pages, recs, nil
		}
		pages = append(pages, pageNum)

		rs, err := page.Records()
		if err != nil {
			return nil, nil, fmt.Errorf("bucket %d page %d: %w", bucket, pageNum, err)
		}
		recs = append(recs, rs...)
	}
}

// rewriteChain repacks recs over the given chain pages in order,
// allocating extra overflow pages when the records outgrow them.
// Surplus pages are reset to empty terminal pages; they stay
// allocated but drop out of the chain.
func (idx *Index) rewriteChain(pages []uint32, recs []record.Record) error {
	images := []storage.Page{storage.NewPage()}
	for _, r := range recs {
		enc, err := record.Encode(r)
		if err != nil {
			return err
		}
		last := images[len(images)-1]
		if err := last.Append(enc); errors.Is(err, storage.ErrPageFull) {
			next := storage.NewPage()
			if err := next.Append(enc); err != nil {
				return err
			}
			images = append(images, next)
		} else if err != nil {
			return err
		}
	}

	// Assign page numbers: reuse the old chain first, then allocate.
	nums := make([]uint32, len(images))
	for k := range images {
		if k < len(pages) {
			nums[k] = pages[k]
			continue
		}
		n, err := idx.pager.AllocatePage()
		if err != nil {
			return err
		}
		nums[k] = n
	}

	for k := range images {
		if k+1 < len(images) {
			images[k].SetNext(int32(nums[k+1]))
		}
		if err := idx.pager.WritePage(nums[k], images[k]); err != nil {
			return err
		}
	}

	for _, surplus := range pages[min(len(images), len(pages)):] {
		if err := idx.pager.WritePage(surplus, storage.NewPage()); err != nil {
			return err
		}
	}
	return nil
}
