package storage

import "errors"

// ErrFormatMismatch is returned when an index file's magic or version
// does not match what this engine understands. Region offsets are not
// checked against the file size.
var ErrFormatMismatch = errors.New("storage: index file format mismatch")

// ErrNotFound is returned when a row index is out of range for both the
// disk region and the hot buffer.
var ErrNotFound = errors.New("storage: row index out of range")

// ErrClosed is returned by Persist when called after Close. Other
// operations do not check whether the engine is closed.
var ErrClosed = errors.New("storage: engine is closed")
