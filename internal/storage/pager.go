package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// Pager owns the index file and provides whole-page access. The only
// I/O primitives are ReadPage and WritePage; callers mutate a page
// in memory and write the full 4096 bytes back, so the file never
// holds a half-written page from a completed operation.
type Pager struct {
	file      *os.File
	pageCount int
	mu        sync.RWMutex
}

// NewPager opens (or creates) the index file. With truncate set the
// file is reset to empty, discarding any previous index.
func NewPager(filename string, truncate bool) (*Pager, error) {
	flags := os.O_RDWR | os.O_CREATE
	if truncate {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(filename, flags, FileMode0664)
	if err != nil {
		return nil, fmt.Errorf("open index file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat index file: %w", err)
	}

	return &Pager{
		file:      file,
		pageCount: int(info.Size()) / PageSize,
	}, nil
}

// ReadPage reads one full page into a fresh buffer. A page that exists
// but delivers fewer than PageSize bytes is reported as ErrShortRead:
// the file was truncated mid-page and the format treats that as
// corruption.
func (p *Pager) ReadPage(pageNum uint32) (Page, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.file == nil {
		return Page{}, ErrPagerClosed
	}
	if int(pageNum) >= p.pageCount {
		return Page{}, fmt.Errorf("%w: %d (have %d pages)", ErrBadPageNumber, pageNum, p.pageCount)
	}

	page := Page{Buf: make([]byte, PageSize)}
	offset := int64(pageNum) * PageSize
	if _, err := p.file.ReadAt(page.Buf, offset); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Page{}, fmt.Errorf("%w: page %d", ErrShortRead, pageNum)
		}
		return Page{}, fmt.Errorf("read page %d: %w", pageNum, err)
	}
	return page, nil
}

// WritePage writes one full page image back to disk.
func (p *Pager) WritePage(pageNum uint32, page Page) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.file == nil {
		return ErrPagerClosed
	}
	if len(page.Buf) != PageSize {
		return fmt.Errorf("invalid page buffer size: expected %d, got %d", PageSize, len(page.Buf))
	}

	offset := int64(pageNum) * PageSize
	if _, err := p.file.WriteAt(page.Buf, offset); err != nil {
		return fmt.Errorf("write page %d: %w", pageNum, err)
	}
	if int(pageNum) >= p.pageCount {
		p.pageCount = int(pageNum) + 1
	}
	return nil
}

// AllocatePage appends a fresh page (no overflow, zero records) to
// the file and returns its number. Pages are never freed.
func (p *Pager) AllocatePage() (uint32, error) {
	p.mu.Lock()
	pageNum := uint32(p.pageCount)
	p.mu.Unlock()

	if err := p.WritePage(pageNum, NewPage()); err != nil {
		return 0, err
	}
	return pageNum, nil
}

// Flush forces buffered writes down to the OS.
func (p *Pager) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.file == nil {
		return ErrPagerClosed
	}
	return p.file.Sync()
}

// Close closes the index file. The pager is unusable afterwards.
func (p *Pager) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.file == nil {
		return nil
	}
	err := p.file.Close()
	p.file = nil
	return err
}

// PageCount returns the number of pages allocated in the file.
func (p *Pager) PageCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pageCount
}
