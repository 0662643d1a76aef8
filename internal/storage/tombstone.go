package storage

import "github.com/bits-and-blooms/bitset"

// DeleteRow marks row idx as tombstoned: it is skipped by every scan
// operation and compacted away the next time Persist runs. Row indices
// are sequential (spec §4.6's hot buffer rows append onto the disk
// row count), so a dense bitset is the natural fit here, unlike the
// hash-derived node ids used elsewhere in the engine.
func (e *Engine) DeleteRow(idx int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	total := e.diskCount + len(e.bufIDs)
	if idx < 0 || idx >= total {
		return ErrNotFound
	}
	if e.tombstones == nil {
		e.tombstones = bitset.New(uint(total))
	}
	e.tombstones.Set(uint(idx))
	return nil
}

// isTombstoned reports whether row idx has been deleted. Caller must
// hold e.mu.
func (e *Engine) isTombstoned(idx int) bool {
	if e.tombstones == nil {
		return false
	}
	return e.tombstones.Test(uint(idx))
}

// TombstoneCount returns how many rows are currently marked deleted
// and awaiting compaction.
func (e *Engine) TombstoneCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.tombstones == nil {
		return 0
	}
	return int(e.tombstones.Count())
}
