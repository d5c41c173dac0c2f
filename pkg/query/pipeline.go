package query

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/matst80/plat-finder/pkg/index"
	"github.com/matst80/plat-finder/pkg/types"
)

// Pipeline turns a snapshot and a query state into the visible list. It holds
// configuration only, every call to Run is a pure function of its arguments.
type Pipeline struct {
	Categories types.CategoryConfig
	Language   language.Tag
}

func NewPipeline(categories types.CategoryConfig, lang language.Tag) *Pipeline {
	return &Pipeline{
		Categories: categories,
		Language:   lang,
	}
}

func DefaultPipeline() *Pipeline {
	return NewPipeline(types.DefaultCategoryConfig(), language.English)
}

// Run applies search, category, institution and favorites filters in that
// order and sorts the result. The returned slice is always a new slice, the
// snapshot is never modified.
func (p *Pipeline) Run(snap *index.Snapshot, state types.QueryState, favorites *types.IdList) []*types.Entry {
	if snap == nil {
		return []*types.Entry{}
	}
	list := Search(snap, state.Query)
	list = p.FilterCategory(list, state.Category)
	list = FilterInstitution(snap, list, state.Institution)
	if state.FavoritesOnly {
		list = FilterFavorites(list, favorites)
	}
	return p.Sort(list, state.Sort)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Search narrows the collection by free text. A query made of digits only is
// an exact id lookup and never falls back to substring matching.
func Search(snap *index.Snapshot, query string) []*types.Entry {
	q := strings.TrimSpace(query)
	if q == "" {
		return snap.Entries
	}
	if isDigits(q) {
		id, err := strconv.ParseUint(q, 10, 32)
		if err != nil {
			return []*types.Entry{}
		}
		if e, ok := index.FindById(snap.SortedById, types.EntryId(id)); ok {
			return []*types.Entry{e}
		}
		return []*types.Entry{}
	}
	needle := strings.ToLower(q)
	ret := make([]*types.Entry, 0)
	for _, e := range snap.Entries {
		if strings.Contains(e.SearchText(), needle) {
			ret = append(ret, e)
		}
	}
	return ret
}

// FilterCategory keeps entries in the category, or in any member of a
// configured group when the value is a group key.
func (p *Pipeline) FilterCategory(list []*types.Entry, category string) []*types.Entry {
	if types.IsAll(category) {
		return list
	}
	members := []types.Category{types.Category(category)}
	if g, ok := p.Categories.Group(category); ok {
		members = g.Members
	}
	ret := make([]*types.Entry, 0, len(list))
	for _, e := range list {
		if slices.Contains(members, e.Category) {
			ret = append(ret, e)
		}
	}
	return ret
}

// FilterInstitution intersects the current list with the institution group,
// the result follows the group order.
func FilterInstitution(snap *index.Snapshot, list []*types.Entry, institution string) []*types.Entry {
	if types.IsAll(institution) {
		return list
	}
	group, ok := snap.Institutions.Group(institution)
	if !ok {
		return []*types.Entry{}
	}
	current := types.NewIdList()
	for _, e := range list {
		current.Add(e.Id)
	}
	ret := make([]*types.Entry, 0, len(group.Entries))
	for _, e := range group.Entries {
		if current.Contains(e.Id) {
			ret = append(ret, e)
		}
	}
	return ret
}

func FilterFavorites(list []*types.Entry, favorites *types.IdList) []*types.Entry {
	ret := make([]*types.Entry, 0, favorites.Len())
	for _, e := range list {
		if favorites.Contains(e.Id) {
			ret = append(ret, e)
		}
	}
	return ret
}

// Sort orders a copy of the list. Text keys use locale collation, a collator
// is created per call since it is not safe for concurrent use.
func (p *Pipeline) Sort(list []*types.Entry, key types.SortKey) []*types.Entry {
	ret := slices.Clone(list)
	if ret == nil {
		ret = []*types.Entry{}
	}
	switch key {
	case types.SortByName:
		col := collate.New(p.Language)
		slices.SortStableFunc(ret, func(a, b *types.Entry) int {
			return col.CompareString(a.Name, b.Name)
		})
	case types.SortByTitle:
		col := collate.New(p.Language)
		slices.SortStableFunc(ret, func(a, b *types.Entry) int {
			return col.CompareString(a.Title, b.Title)
		})
	case types.SortByCategory:
		slices.SortStableFunc(ret, func(a, b *types.Entry) int {
			if c := cmp.Compare(p.Categories.Rank(a.Category), p.Categories.Rank(b.Category)); c != 0 {
				return c
			}
			return cmp.Compare(a.Id, b.Id)
		})
	default:
		slices.SortStableFunc(ret, func(a, b *types.Entry) int {
			return cmp.Compare(a.Id, b.Id)
		})
	}
	return ret
}
