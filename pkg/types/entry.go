package types

import (
	"strings"
)

type EntryId uint32

type Category string

const (
	CategoryProfessional Category = "P"
	CategoryStudent      Category = "S"
	CategoryApprentice   Category = "A"
)

const UnspecifiedInstitution = "Unspecified"

// Placeholder shown for text fields that are missing.
const Placeholder = "—"

// Entry is a single catalogue record, either a designer piece or an auction lot.
type Entry struct {
	Id          EntryId  `json:"id"`
	Category    Category `json:"category,omitempty"`
	Name        string   `json:"name,omitempty"`
	Title       string   `json:"title,omitempty"`
	Institution string   `json:"institution,omitempty"`
	Type        string   `json:"type,omitempty"`
	Image       Asset    `json:"image"`
	ImageUrl    string   `json:"imageUrl,omitempty"`
	Price       *float64 `json:"price"`
	PriceKey    string   `json:"priceKey,omitempty"`
	Description string   `json:"description,omitempty"`
	QrUrl       string   `json:"qrUrl,omitempty"`
	Status      string   `json:"status,omitempty"`
}

// GroupKey is the institution value used for grouping and filtering.
func (e *Entry) GroupKey() string {
	return NormalizeInstitution(e.Institution)
}

// SearchText is the lowercased haystack matched by free text queries.
func (e *Entry) SearchText() string {
	return strings.ToLower(strings.Join([]string{
		e.Name,
		e.Title,
		e.Type,
		e.Institution,
		string(e.Category),
	}, " "))
}

func NormalizeInstitution(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return UnspecifiedInstitution
	}
	return v
}

func DisplayText(value string) string {
	if strings.TrimSpace(value) == "" {
		return Placeholder
	}
	return value
}

// RawEntry is the shape of the bundled seed list.
type RawEntry struct {
	EntryNo     uint32 `json:"entryNo"`
	Category    string `json:"category"`
	Name        string `json:"name"`
	Institution string `json:"institution"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Img         string `json:"img"`
	ImageUrl    string `json:"image_url"`
}

// ToEntry normalizes a seed record. Image references starting with http(s)
// are treated as remote, everything else as a bundled asset handle.
func (r RawEntry) ToEntry() Entry {
	return Entry{
		Id:          EntryId(r.EntryNo),
		Category:    Category(strings.TrimSpace(r.Category)),
		Name:        strings.TrimSpace(r.Name),
		Title:       strings.TrimSpace(r.Title),
		Institution: strings.TrimSpace(r.Institution),
		Type:        strings.TrimSpace(r.Type),
		Image:       AssetFromReference(r.Img),
		ImageUrl:    strings.TrimSpace(r.ImageUrl),
	}
}

func EntriesFromRaw(raw []RawEntry) []Entry {
	ret := make([]Entry, 0, len(raw))
	for _, r := range raw {
		ret = append(ret, r.ToEntry())
	}
	return ret
}
