package types

import (
	"iter"

	"github.com/RoaringBitmap/roaring"
)

// IdList is a set of entry ids backed by a roaring bitmap.
type IdList struct {
	bm *roaring.Bitmap
}

func NewIdList(ids ...EntryId) *IdList {
	ret := &IdList{bm: roaring.New()}
	for _, id := range ids {
		ret.Add(id)
	}
	return ret
}

func (l *IdList) bitmap() *roaring.Bitmap {
	if l.bm == nil {
		l.bm = roaring.New()
	}
	return l.bm
}

func (l *IdList) Add(id EntryId) {
	l.bitmap().Add(uint32(id))
}

func (l *IdList) Remove(id EntryId) {
	l.bitmap().Remove(uint32(id))
}

// Toggle flips membership and reports whether the id is now present.
func (l *IdList) Toggle(id EntryId) bool {
	if l.Contains(id) {
		l.Remove(id)
		return false
	}
	l.Add(id)
	return true
}

func (l *IdList) Contains(id EntryId) bool {
	if l == nil || l.bm == nil {
		return false
	}
	return l.bm.Contains(uint32(id))
}

func (l *IdList) Len() int {
	if l == nil || l.bm == nil {
		return 0
	}
	return int(l.bm.GetCardinality())
}

func (l *IdList) Clone() *IdList {
	if l == nil || l.bm == nil {
		return NewIdList()
	}
	return &IdList{bm: l.bm.Clone()}
}

func (l *IdList) Ids() iter.Seq[EntryId] {
	return func(yield func(EntryId) bool) {
		if l == nil || l.bm == nil {
			return
		}
		it := l.bm.Iterator()
		for it.HasNext() {
			if !yield(EntryId(it.Next())) {
				return
			}
		}
	}
}

func (l *IdList) ToSlice() []EntryId {
	ret := make([]EntryId, 0, l.Len())
	for id := range l.Ids() {
		ret = append(ret, id)
	}
	return ret
}
