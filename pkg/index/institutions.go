package index

import (
	"slices"

	"github.com/matst80/plat-finder/pkg/types"
)

type InstitutionGroup struct {
	Name    string
	Entries []*types.Entry
	Ids     *types.IdList
}

// InstitutionIndex groups entries by normalized institution. Groups keep the
// order in which their first entry was seen, entries keep collection order.
type InstitutionIndex struct {
	order  []string
	groups map[string]*InstitutionGroup
}

func newInstitutionIndex() *InstitutionIndex {
	return &InstitutionIndex{
		order:  make([]string, 0),
		groups: make(map[string]*InstitutionGroup),
	}
}

func (idx *InstitutionIndex) add(e *types.Entry) {
	key := e.GroupKey()
	g, ok := idx.groups[key]
	if !ok {
		g = &InstitutionGroup{Name: key, Ids: types.NewIdList()}
		idx.groups[key] = g
		idx.order = append(idx.order, key)
	}
	g.Entries = append(g.Entries, e)
	g.Ids.Add(e.Id)
}

// Group looks up an institution, the name is normalized the same way entries are.
func (idx *InstitutionIndex) Group(name string) (*InstitutionGroup, bool) {
	if idx == nil {
		return nil, false
	}
	g, ok := idx.groups[types.NormalizeInstitution(name)]
	return g, ok
}

func (idx *InstitutionIndex) Keys() []string {
	if idx == nil {
		return nil
	}
	return slices.Clone(idx.order)
}

func (idx *InstitutionIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.order)
}

func (idx *InstitutionIndex) Groups() []*InstitutionGroup {
	if idx == nil {
		return nil
	}
	ret := make([]*InstitutionGroup, 0, len(idx.order))
	for _, key := range idx.order {
		ret = append(ret, idx.groups[key])
	}
	return ret
}
