package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/lhindex/internal/record"
)

func newTestPager(t *testing.T) (*Pager, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.lh")
	p, err := NewPager(path, true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p, path
}

func TestPagerAllocateSequential(t *testing.T) {
	p, _ := newTestPager(t)
	assert.Equal(t, 0, p.PageCount())

	for want := uint32(0); want < 3; want++ {
		got, err := p.AllocatePage()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, 3, p.PageCount())

	// Fresh pages carry an empty terminal header.
	pg, err := p.ReadPage(1)
	require.NoError(t, err)
	assert.Equal(t, NoOverflow, pg.Next())
	assert.Equal(t, uint32(0), pg.Count())
}

func TestPagerWriteReadRoundTrip(t *testing.T) {
	p, _ := newTestPager(t)
	n, err := p.AllocatePage()
	require.NoError(t, err)

	pg := NewPage()
	rec := record.Record{ID: 11, Name: "x", Bio: "y", ManagerID: 12}
	enc, err := record.Encode(rec)
	require.NoError(t, err)
	require.NoError(t, pg.Append(enc))
	pg.SetNext(5)
	require.NoError(t, p.WritePage(n, pg))

	got, err := p.ReadPage(n)
	require.NoError(t, err)
	assert.Equal(t, int32(5), got.Next())
	assert.Equal(t, uint32(1), got.Count())

	recs, err := got.Records()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, rec, recs[0])
}

func TestPagerBadPageNumber(t *testing.T) {
	p, _ := newTestPager(t)
	_, err := p.ReadPage(0)
	require.ErrorIs(t, err, ErrBadPageNumber)
}

func TestPagerShortRead(t *testing.T) {
	p, path := newTestPager(t)
	_, err := p.AllocatePage()
	require.NoError(t, err)
	require.NoError(t, p.Close())

	// Truncate mid-page: the page exists but cannot deliver 4096 bytes.
	require.NoError(t, os.Truncate(path, PageSize/2))

	reopened, err := NewPager(path, false)
	require.NoError(t, err)
	defer reopened.Close()

	// A half page does not count as a page.
	assert.Equal(t, 0, reopened.PageCount())

	// Force the read path to see the torn page.
	reopened.pageCount = 1
	_, err = reopened.ReadPage(0)
	require.ErrorIs(t, err, ErrShortRead)
}

func TestPagerReopenKeepsPageCount(t *testing.T) {
	p, path := newTestPager(t)
	for i := 0; i < 4; i++ {
		_, err := p.AllocatePage()
		require.NoError(t, err)
	}
	require.NoError(t, p.Flush())
	require.NoError(t, p.Close())

	reopened, err := NewPager(path, false)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, 4, reopened.PageCount())
}

func TestPagerClosed(t *testing.T) {
	p, _ := newTestPager(t)
	require.NoError(t, p.Close())

	_, err := p.ReadPage(0)
	require.ErrorIs(t, err, ErrPagerClosed)
	require.ErrorIs(t, p.WritePage(0, NewPage()), ErrPagerClosed)
	require.ErrorIs(t, p.Flush(), ErrPagerClosed)
}
