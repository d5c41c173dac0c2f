package directus

import (
	"strconv"
	"strings"

	"github.com/matst80/plat-finder/pkg/pricing"
	"github.com/matst80/plat-finder/pkg/types"
)

const Untitled = "Untitled"

func firstString(row *pricing.Node, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(row.GetString(k)); v != "" {
			return v
		}
	}
	return ""
}

// AssetUrl builds the public url for a file reference, either an expanded
// file object or a bare file id.
func (c *Client) AssetUrl(ref *pricing.Node) string {
	if ref == nil {
		return ""
	}
	file := ""
	switch ref.Kind {
	case pricing.KindObject:
		file = firstString(ref, "filename_disk", "id")
	case pricing.KindString:
		file = strings.TrimSpace(ref.String)
	}
	if file == "" {
		return ""
	}
	return c.BaseUrl + "/assets/" + file
}

func rowId(row *pricing.Node) (types.EntryId, bool) {
	raw := row.GetString("id")
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return types.EntryId(id), true
}

// MapRow converts one product row. Rows without a numeric id are rejected.
func (c *Client) MapRow(row *pricing.Node) (types.Entry, bool) {
	id, ok := rowId(row)
	if !ok {
		return types.Entry{}, false
	}
	price := pricing.Resolve(row)
	hero, _ := row.Get("hero_image")
	qr, _ := row.Get("product_qr")
	title := firstString(row, "product_title", "title")
	if title == "" {
		title = Untitled
	}
	status := firstString(row, "status")
	if status == "" {
		status = "unknown"
	}
	return types.Entry{
		Id:          id,
		Title:       title,
		Name:        firstString(row, "jeweller", "product_jeweller"),
		Institution: firstString(row, "company", "product_company"),
		Description: firstString(row, "product_description", "description"),
		Price:       price.Price,
		PriceKey:    price.Key,
		ImageUrl:    c.AssetUrl(hero),
		QrUrl:       c.AssetUrl(qr),
		Status:      status,
	}, true
}
