package linearhash

import (
	"bytes"
	"fmt"
	"io"
)

// Debug prints the controller state and the shape of every bucket
// chain to w.
func (idx *Index) Debug(w io.Writer) {
	fmt.Fprintf(w, "=== LinearHash Debug ===\n")
	fmt.Fprintf(w, "level=%d buckets=%d records=%d pages=%d splitCursor=%d\n",
		idx.level, idx.buckets, idx.records, idx.pager.PageCount(), idx.splitCursor)
	fmt.Fprintf(w, "utilisation=%.3f threshold=%.3f\n", idx.utilisation(), idx.threshold)

	fmt.Fprintln(w, "\n-- Buckets --")
	if idx.buckets == 0 {
		fmt.Fprintln(w, "(empty index)")
	}
	for b := 0; b < idx.buckets; b++ {
		fmt.Fprintf(w, "[%d] primary=%d pages:", b, idx.dir[b])

		it := idx.chain(b)
		for {
			pageNum, page, done, err := it.Next()
			if err != nil {
				fmt.Fprintf(w, " <error: %v>", err)
				break
			}
			if done {
				break
			}
			used, err := page.UsedBytes()
			if err != nil {
				fmt.Fprintf(w, " %d<error: %v>", pageNum, err)
				break
			}
			fmt.Fprintf(w, " %d(count=%d used=%d)", pageNum, page.Count(), used)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, "=== End LinearHash Debug ===")
}

func (idx *Index) DebugString() string {
	var b bytes.Buffer
	idx.Debug(&b)
	return b.String()
}
