package query

import (
	"testing"

	"github.com/matst80/plat-finder/pkg/index"
	"github.com/matst80/plat-finder/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotOf(entries ...types.Entry) *index.Snapshot {
	return index.NewSnapshot(entries, types.SourceFallback, types.DefaultCategoryConfig().Known)
}

func ids(list []*types.Entry) []types.EntryId {
	ret := make([]types.EntryId, 0, len(list))
	for _, e := range list {
		ret = append(ret, e.Id)
	}
	return ret
}

func state(q string) types.QueryState {
	s := types.QueryState{Query: q}
	s.Sanitize()
	return s
}

func scenario() *index.Snapshot {
	return snapshotOf(
		types.Entry{Id: 2, Title: "Stratos", Category: "P", Institution: "Vijay Shah Concepts"},
		types.Entry{Id: 66, Title: "Eclipse", Category: "P", Institution: "Platandia"},
	)
}

func TestScenario(t *testing.T) {
	p := DefaultPipeline()
	snap := scenario()

	assert.Equal(t, []types.EntryId{66}, ids(p.Run(snap, state("66"), nil)))
	assert.Equal(t, []types.EntryId{66}, ids(p.Run(snap, state("eclipse"), nil)))

	byTitle := state("")
	byTitle.Sort = types.SortByTitle
	assert.Equal(t, []types.EntryId{66, 2}, ids(p.Run(snap, byTitle, nil)))
}

func TestNumericQueryNeverFallsBackToSubstring(t *testing.T) {
	p := DefaultPipeline()
	snap := snapshotOf(
		types.Entry{Id: 1, Title: "Piece 66"},
		types.Entry{Id: 12, Title: "Other"},
	)
	assert.Empty(t, p.Run(snap, state("66"), nil))
	assert.Empty(t, p.Run(snap, state("2"), nil))
	assert.Equal(t, []types.EntryId{12}, ids(p.Run(snap, state(" 12 "), nil)))
	assert.Empty(t, p.Run(snap, state("99999999999"), nil))
	assert.Equal(t, []types.EntryId{1}, ids(p.Run(snap, state("piece 6"), nil)))
}

func TestDeterminism(t *testing.T) {
	p := DefaultPipeline()
	snap := scenario()
	for _, key := range []types.SortKey{types.SortByEntry, types.SortByName, types.SortByTitle, types.SortByCategory} {
		s := state("")
		s.Sort = key
		first := p.Run(snap, s, nil)
		second := p.Run(snap, s, nil)
		require.Equal(t, len(first), len(second))
		for i := range first {
			assert.Same(t, first[i], second[i])
		}
	}
}

func TestFiltersIntersect(t *testing.T) {
	p := DefaultPipeline()
	snap := snapshotOf(
		types.Entry{Id: 1, Category: "P", Institution: "A"},
		types.Entry{Id: 2, Category: "S", Institution: "A"},
		types.Entry{Id: 3, Category: "P", Institution: "B"},
		types.Entry{Id: 4, Category: "S", Institution: "B"},
	)
	s := state("")
	s.Category = "P"
	s.Institution = "A"
	assert.Equal(t, []types.EntryId{1}, ids(p.Run(snap, s, nil)))

	s.Category = "SA"
	s.Institution = "B"
	assert.Equal(t, []types.EntryId{4}, ids(p.Run(snap, s, nil)))

	s.Institution = "Missing"
	assert.Empty(t, p.Run(snap, s, nil))
}

func TestInstitutionFilterNeverReintroducesSearchMisses(t *testing.T) {
	p := DefaultPipeline()
	snap := snapshotOf(
		types.Entry{Id: 1, Title: "Halo", Institution: "A"},
		types.Entry{Id: 2, Title: "Orbit", Institution: "A"},
	)
	s := state("halo")
	s.Institution = " A "
	assert.Equal(t, []types.EntryId{1}, ids(p.Run(snap, s, nil)))
}

func TestCategoryGroup(t *testing.T) {
	p := DefaultPipeline()
	snap := snapshotOf(
		types.Entry{Id: 1, Category: "P"},
		types.Entry{Id: 2, Category: "S"},
		types.Entry{Id: 3, Category: "A"},
		types.Entry{Id: 4},
	)
	s := state("")
	s.Category = "SA"
	assert.Equal(t, []types.EntryId{2, 3}, ids(p.Run(snap, s, nil)))
	s.Category = "A"
	assert.Equal(t, []types.EntryId{3}, ids(p.Run(snap, s, nil)))
	s.Category = "all"
	assert.Len(t, p.Run(snap, s, nil), 4)
}

func TestFavoritesRoundTrip(t *testing.T) {
	p := DefaultPipeline()
	snap := snapshotOf(
		types.Entry{Id: 1, Category: "P"},
		types.Entry{Id: 2, Category: "P"},
		types.Entry{Id: 3, Category: "S"},
	)
	favorites := types.NewIdList(2, 3)
	s := state("")
	s.Category = "P"

	before := ids(p.Run(snap, s, favorites))
	s.FavoritesOnly = true
	assert.Equal(t, []types.EntryId{2}, ids(p.Run(snap, s, favorites)))
	s.FavoritesOnly = false
	assert.Equal(t, before, ids(p.Run(snap, s, favorites)))

	s.FavoritesOnly = true
	assert.Empty(t, p.Run(snap, s, nil))
}

func TestSortKeys(t *testing.T) {
	p := DefaultPipeline()
	snap := snapshotOf(
		types.Entry{Id: 5, Name: "zoe", Category: "A"},
		types.Entry{Id: 3, Name: "Ålesund", Category: "X"},
		types.Entry{Id: 4, Name: "", Category: "P"},
		types.Entry{Id: 1, Name: "Anna", Category: "S"},
		types.Entry{Id: 2, Name: "anna", Category: "P"},
	)
	s := state("")
	assert.Equal(t, []types.EntryId{1, 2, 3, 4, 5}, ids(p.Run(snap, s, nil)))

	s.Sort = types.SortByCategory
	assert.Equal(t, []types.EntryId{3, 2, 4, 1, 5}, ids(p.Run(snap, s, nil)))

	s.Sort = types.SortByName
	got := ids(p.Run(snap, s, nil))
	assert.Equal(t, types.EntryId(4), got[0], "empty names sort first")
	assert.Equal(t, types.EntryId(5), got[len(got)-1])
	assert.ElementsMatch(t, []types.EntryId{1, 2, 3}, got[1:4])
}

func TestRunDoesNotMutateSnapshot(t *testing.T) {
	p := DefaultPipeline()
	snap := snapshotOf(
		types.Entry{Id: 3, Title: "C"},
		types.Entry{Id: 1, Title: "A"},
		types.Entry{Id: 2, Title: "B"},
	)
	order := ids(snap.Entries)
	sorted := ids(snap.SortedById)

	s := state("")
	s.Sort = types.SortByTitle
	result := p.Run(snap, s, nil)
	result[0] = nil

	assert.Equal(t, order, ids(snap.Entries))
	assert.Equal(t, sorted, ids(snap.SortedById))
}

func TestRunNilSnapshot(t *testing.T) {
	assert.Empty(t, DefaultPipeline().Run(nil, state("x"), nil))
}

func TestChips(t *testing.T) {
	p := DefaultPipeline()
	snap := snapshotOf(
		types.Entry{Id: 1, Category: "P", Institution: "A"},
		types.Entry{Id: 2, Category: "S", Institution: "B"},
		types.Entry{Id: 3, Category: "A", Institution: "A"},
		types.Entry{Id: 4, Category: "Q"},
	)
	assert.Equal(t, []Chip{
		{Key: "All", Label: "All Categories", Count: 4},
		{Key: "P", Label: "Professional", Count: 1},
		{Key: "SA", Label: "Student/Apprentice", Count: 2},
	}, p.CategoryChips(snap))

	assert.Equal(t, []Chip{
		{Key: "All", Label: "All", Count: 4},
		{Key: "A", Label: "A", Count: 2},
		{Key: "B", Label: "B", Count: 1},
		{Key: types.UnspecifiedInstitution, Label: types.UnspecifiedInstitution, Count: 1},
	}, InstitutionChips(snap))
}
