package server

import (
	"context"

	"github.com/matst80/plat-finder/pkg/catalogue"
	"github.com/matst80/plat-finder/pkg/query"
	"github.com/matst80/plat-finder/pkg/types"
)

// Pinger reports whether a remote source is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type ReportStore interface {
	SaveMigrationReport(report any) error
	LoadMigrationReport(report any) error
}

// Collection is one catalogue served under /api/{name}.
type Collection struct {
	Catalogue *catalogue.Catalogue
	Remote    Pinger
	Reports   ReportStore
}

type EntryView struct {
	types.Entry
	Image    types.Asset `json:"image"`
	Favorite bool        `json:"favorite"`
}

type EntriesResponse struct {
	Catalogue string           `json:"catalogue"`
	Source    types.DataSource `json:"source"`
	Count     int              `json:"count"`
	Query     types.QueryState `json:"query"`
	Entries   []EntryView      `json:"entries"`
}

type FacetsResponse struct {
	Categories   []query.Chip `json:"categories"`
	Institutions []query.Chip `json:"institutions"`
}

type FavoriteResponse struct {
	Id       types.EntryId   `json:"id"`
	Favorite bool            `json:"favorite"`
	Ids      []types.EntryId `json:"ids"`
}

type SessionResponse struct {
	Session bool `json:"session"`
}

type RemoteStatus struct {
	Reachable bool   `json:"reachable"`
	Error     string `json:"error,omitempty"`
}

type StatusResponse struct {
	Catalogues []catalogue.Status      `json:"catalogues"`
	Remotes    map[string]RemoteStatus `json:"remotes"`
}

type ImageResponse struct {
	Id  types.EntryId `json:"id"`
	Url string        `json:"url"`
}
