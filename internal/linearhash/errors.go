package linearhash

import "errors"

var (
	ErrClosed         = errors.New("linearhash: index is closed")
	ErrRecordTooLarge = errors.New("linearhash: record does not fit in one page")
	ErrCorruptChain   = errors.New("linearhash: overflow chain does not terminate")
	ErrNoMeta         = errors.New("linearhash: meta sidecar not found")
	ErrBadMeta        = errors.New("linearhash: meta sidecar is invalid")
)
