package index

import (
	"cmp"
	"log"
	"slices"
	"time"

	"github.com/matst80/plat-finder/pkg/types"
)

// Snapshot bundles a collection with the indexes derived from it. It is built
// once per collection change and never mutated afterwards, readers can keep
// using an old snapshot while a new one is swapped in.
type Snapshot struct {
	Entries        []*types.Entry
	SortedById     []*types.Entry
	Institutions   *InstitutionIndex
	CategoryCounts map[types.Category]int
	All            *types.IdList
	Source         types.DataSource
	Created        time.Time
}

// NewSnapshot copies the entries and builds every index in one pass. Ids are
// expected to be unique, later duplicates are dropped.
func NewSnapshot(entries []types.Entry, source types.DataSource, known []types.Category) *Snapshot {
	s := &Snapshot{
		Entries:        make([]*types.Entry, 0, len(entries)),
		Institutions:   newInstitutionIndex(),
		CategoryCounts: make(map[types.Category]int, len(known)),
		All:            types.NewIdList(),
		Source:         source,
		Created:        time.Now(),
	}
	for _, c := range known {
		s.CategoryCounts[c] = 0
	}
	for i := range entries {
		e := entries[i]
		if s.All.Contains(e.Id) {
			log.Printf("Duplicate entry id %d in %s collection, skipping", e.Id, source)
			continue
		}
		s.All.Add(e.Id)
		s.Entries = append(s.Entries, &e)
		s.Institutions.add(&e)
		if _, ok := s.CategoryCounts[e.Category]; ok {
			s.CategoryCounts[e.Category]++
		}
	}
	s.SortedById = slices.Clone(s.Entries)
	slices.SortFunc(s.SortedById, func(a, b *types.Entry) int {
		return cmp.Compare(a.Id, b.Id)
	})
	return s
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Entries)
}

func (s *Snapshot) Get(id types.EntryId) (*types.Entry, bool) {
	if s == nil {
		return nil, false
	}
	return FindById(s.SortedById, id)
}

func (s *Snapshot) IsLive() bool {
	return s != nil && s.Source == types.SourceLive
}

// FindById does a binary search over entries sorted ascending by id.
func FindById(sorted []*types.Entry, id types.EntryId) (*types.Entry, bool) {
	lo, hi := 0, len(sorted)-1
	for lo <= hi {
		mid := int(uint(lo+hi) >> 1)
		v := sorted[mid].Id
		switch {
		case v == id:
			return sorted[mid], true
		case v < id:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return nil, false
}
