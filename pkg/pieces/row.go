package pieces

import (
	"strconv"
	"strings"

	"github.com/matst80/plat-finder/pkg/pricing"
	"github.com/matst80/plat-finder/pkg/types"
)

func entryNo(row *pricing.Node) (uint32, bool) {
	raw := strings.TrimSpace(row.GetString("entryNo"))
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(id), true
}

// MapRow converts one pieces row field by field. Mistyped fields fall back to
// empty values, rows without a numeric entryNo are rejected.
func MapRow(row *pricing.Node) (types.Entry, bool) {
	id, ok := entryNo(row)
	if !ok {
		return types.Entry{}, false
	}
	return types.RawEntry{
		EntryNo:     id,
		Category:    row.GetString("category"),
		Name:        row.GetString("name"),
		Institution: row.GetString("institution"),
		Type:        row.GetString("type"),
		Title:       row.GetString("title"),
		Img:         row.GetString("img"),
		ImageUrl:    row.GetString("image_url"),
	}.ToEntry(), true
}
