package types

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/schema"

	"github.com/matst80/plat-finder/pkg/common/jsoncompat"
)

type SortKey string

const (
	SortByEntry    SortKey = "entry"
	SortByName     SortKey = "name"
	SortByTitle    SortKey = "title"
	SortByCategory SortKey = "category"
)

// AllFilter disables a category or institution filter.
const AllFilter = "All"

// QueryState is the list state a client sends with every request.
type QueryState struct {
	Query         string  `json:"q" schema:"q"`
	Category      string  `json:"category" schema:"category"`
	Institution   string  `json:"institution" schema:"institution"`
	FavoritesOnly bool    `json:"favorites" schema:"favorites"`
	Sort          SortKey `json:"sort" schema:"sort"`
}

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

func IsAll(value string) bool {
	v := strings.TrimSpace(value)
	return v == "" || strings.EqualFold(v, AllFilter)
}

func (s *QueryState) Sanitize() {
	switch s.Sort {
	case SortByEntry, SortByName, SortByTitle, SortByCategory:
	default:
		s.Sort = SortByEntry
	}
	if IsAll(s.Category) {
		s.Category = AllFilter
	}
	if IsAll(s.Institution) {
		s.Institution = AllFilter
	}
}

func QueryStateFromValues(query url.Values) (*QueryState, error) {
	qs := &QueryState{Sort: SortByEntry}
	err := decoder.Decode(qs, query)
	qs.Sanitize()
	return qs, err
}

func GetQueryFromRequest(r *http.Request) (*QueryState, error) {
	if r.Method == http.MethodGet {
		return QueryStateFromValues(r.URL.Query())
	}
	qs := &QueryState{Sort: SortByEntry}
	err := jsoncompat.Decode(r.Body, qs)
	qs.Sanitize()
	return qs, err
}
