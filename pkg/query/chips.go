package query

import (
	"github.com/matst80/plat-finder/pkg/index"
	"github.com/matst80/plat-finder/pkg/types"
)

type Chip struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// CategoryChips lists the category filters, a group counts the sum of its members.
func (p *Pipeline) CategoryChips(snap *index.Snapshot) []Chip {
	ret := []Chip{{Key: types.AllFilter, Label: "All Categories", Count: snap.Len()}}
	for _, g := range p.Categories.Groups {
		count := 0
		if snap != nil {
			for _, m := range g.Members {
				count += snap.CategoryCounts[m]
			}
		}
		ret = append(ret, Chip{Key: g.Key, Label: g.Label, Count: count})
	}
	return ret
}

// InstitutionChips lists every institution in index order after the All chip.
func InstitutionChips(snap *index.Snapshot) []Chip {
	ret := []Chip{{Key: types.AllFilter, Label: types.AllFilter, Count: snap.Len()}}
	if snap == nil {
		return ret
	}
	for _, g := range snap.Institutions.Groups() {
		ret = append(ret, Chip{Key: g.Name, Label: g.Name, Count: len(g.Entries)})
	}
	return ret
}
