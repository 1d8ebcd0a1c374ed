package linearhash

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/renameio"

	"github.com/tuannm99/lhindex/internal/storage"
)

// MetaSuffix names the sidecar holding controller state, next to the
// index file: <file>.lh.meta.json.
const MetaSuffix = ".lh.meta.json"

const metaVersion = 1

// diskMeta is the persisted controller state. The index file itself
// stores no header block, so reopening depends on this sidecar.
type diskMeta struct {
	Version       int      `json:"version"`
	Level         int      `json:"level"`
	Buckets       int      `json:"buckets"`
	Records       uint64   `json:"records"`
	PayloadBytes  uint64   `json:"payload_bytes"`
	Pages         int      `json:"pages"`
	SplitCursor   int      `json:"split_cursor"`
	PageDirectory []uint32 `json:"page_directory"`
}

func (idx *Index) saveMeta() error {
	m := diskMeta{
		Version:       metaVersion,
		Level:         idx.level,
		Buckets:       idx.buckets,
		Records:       idx.records,
		PayloadBytes:  idx.payload,
		Pages:         idx.pager.PageCount(),
		SplitCursor:   idx.splitCursor,
		PageDirectory: idx.dir,
	}

	data, err := json.MarshalIndent(&m, "", "  ")
	if err != nil {
		return err
	}
	if err := renameio.WriteFile(idx.metaPath, data, storage.FileMode0644); err != nil {
		return fmt.Errorf("write meta sidecar: %w", err)
	}

	slog.Debug("linearhash.meta.saved",
		"path", idx.metaPath,
		"level", m.Level,
		"buckets", m.Buckets,
		"records", m.Records,
	)
	return nil
}

func (idx *Index) loadMeta() error {
	data, err := os.ReadFile(idx.metaPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNoMeta, idx.metaPath)
		}
		return err
	}

	var m diskMeta
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("%w: %v", ErrBadMeta, err)
	}
	if m.Version != metaVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrBadMeta, m.Version)
	}
	if len(m.PageDirectory) != m.Buckets {
		return fmt.Errorf("%w: directory length %d != buckets %d", ErrBadMeta, len(m.PageDirectory), m.Buckets)
	}
	if m.Buckets > 0 && (m.Level < 1 || m.Buckets > 1<<uint(m.Level)) {
		return fmt.Errorf("%w: level %d cannot address %d buckets", ErrBadMeta, m.Level, m.Buckets)
	}
	if m.Pages != idx.pager.PageCount() {
		return fmt.Errorf("%w: meta has %d pages, file has %d", ErrBadMeta, m.Pages, idx.pager.PageCount())
	}
	for b, pageNum := range m.PageDirectory {
		if int(pageNum) >= m.Pages {
			return fmt.Errorf("%w: bucket %d points past end of file (page %d)", ErrBadMeta, b, pageNum)
		}
	}

	idx.level = m.Level
	idx.buckets = m.Buckets
	idx.records = m.Records
	idx.payload = m.PayloadBytes
	idx.splitCursor = m.SplitCursor
	idx.dir = m.PageDirectory
	return nil
}
