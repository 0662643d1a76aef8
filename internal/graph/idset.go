package graph

import (
	"math"

	"github.com/RoaringBitmap/roaring"
)

// idSet is a set of int64 node ids backed by a compressed RoaringBitmap
// for the common case (ids fit in uint32, true for every id scheme this
// spec's dataset generators use) and a plain map overflow for anything
// outside that range, so correctness never depends on the assumption.
type idSet struct {
	bitmap   *roaring.Bitmap
	overflow map[int64]struct{}
}

func newIDSet() *idSet {
	return &idSet{bitmap: roaring.New()}
}

func (s *idSet) add(id int64) {
	if id >= 0 && id <= math.MaxUint32 {
		s.bitmap.Add(uint32(id))
		return
	}
	if s.overflow == nil {
		s.overflow = make(map[int64]struct{})
	}
	s.overflow[id] = struct{}{}
}

func (s *idSet) toSlice() []int64 {
	out := make([]int64, 0, int(s.bitmap.GetCardinality())+len(s.overflow))
	it := s.bitmap.Iterator()
	for it.HasNext() {
		out = append(out, int64(it.Next()))
	}
	for id := range s.overflow {
		out = append(out, id)
	}
	return out
}

func (s *idSet) contains(id int64) bool {
	if id >= 0 && id <= math.MaxUint32 {
		return s.bitmap.Contains(uint32(id))
	}
	_, ok := s.overflow[id]
	return ok
}
