package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/matst80/plat-finder/pkg/catalogue"
	"github.com/matst80/plat-finder/pkg/common"
	"github.com/matst80/plat-finder/pkg/index"
	"github.com/matst80/plat-finder/pkg/query"
	"github.com/matst80/plat-finder/pkg/types"
)

var (
	noQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "platfinder_queries_total",
		Help: "The total number of processed catalogue queries",
	}, []string{"catalogue"})
	noOpens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "platfinder_entry_opens_total",
		Help: "The total number of opened entries",
	}, []string{"catalogue"})
	noFavoriteToggles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "platfinder_favorite_toggles_total",
		Help: "The total number of favorite toggles",
	})
)

var tracer = otel.Tracer("plat-finder-server")

// view copies the entry for display, missing text shows as a placeholder.
func (ws *WebServer) view(c *catalogue.Catalogue, e *types.Entry, favorites *types.IdList) EntryView {
	display := *e
	display.Name = types.DisplayText(e.Name)
	display.Title = types.DisplayText(e.Title)
	display.Institution = types.DisplayText(e.Institution)
	display.Type = types.DisplayText(e.Type)
	return EntryView{
		Entry:    display,
		Image:    c.Image(e),
		Favorite: favorites.Contains(e.Id),
	}
}

// runQuery evaluates against the given snapshot so the reported source
// matches the results.
func (ws *WebServer) runQuery(ctx context.Context, c *catalogue.Catalogue, snap *index.Snapshot, state types.QueryState, favorites *types.IdList) []*types.Entry {
	_, span := tracer.Start(ctx, "catalogue.Query")
	defer span.End()
	ret := c.Pipeline().Run(snap, state, favorites)
	span.SetAttributes(
		attribute.String("catalogue", c.Name()),
		attribute.String("query", state.Query),
		attribute.Int("results", len(ret)),
	)
	return ret
}

func (ws *WebServer) Entries(w http.ResponseWriter, r *http.Request, sessionId int) (any, error) {
	col, err := ws.collection(r)
	if err != nil {
		return nil, err
	}
	state, err := types.GetQueryFromRequest(r)
	if err != nil {
		return nil, common.NewStatusError(http.StatusBadRequest, err)
	}
	c := col.Catalogue
	favorites := ws.Favorites.Get(sessionId, c.Name())
	snap := c.Snapshot()
	list := ws.runQuery(r.Context(), c, snap, *state, favorites)
	noQueries.WithLabelValues(c.Name()).Inc()

	entries := make([]EntryView, len(list))
	for i, e := range list {
		entries[i] = ws.view(c, e, favorites)
	}
	noCacheHeaders(w)
	return EntriesResponse{
		Catalogue: c.Name(),
		Source:    snap.Source,
		Count:     len(entries),
		Query:     *state,
		Entries:   entries,
	}, nil
}

func (ws *WebServer) GetEntry(w http.ResponseWriter, r *http.Request, sessionId int) (any, error) {
	col, err := ws.collection(r)
	if err != nil {
		return nil, err
	}
	id, err := entryId(r)
	if err != nil {
		return nil, err
	}
	c := col.Catalogue
	e, ok := c.Get(id)
	if !ok {
		return nil, common.NewStatusError(http.StatusNotFound, catalogue.ErrUnknownEntry)
	}
	noOpens.WithLabelValues(c.Name()).Inc()
	if ws.Tracking != nil {
		ws.Tracking.TrackEvent(sessionId, types.TrackingEvent{
			Name: "designer_open",
			Params: map[string]string{
				"entry_id": strconv.FormatUint(uint64(e.Id), 10),
				"cat":      string(e.Category),
			},
		})
	}
	return ws.view(c, e, ws.Favorites.Get(sessionId, c.Name())), nil
}

func (ws *WebServer) Facets(w http.ResponseWriter, r *http.Request, sessionId int) (any, error) {
	col, err := ws.collection(r)
	if err != nil {
		return nil, err
	}
	c := col.Catalogue
	snap := c.Snapshot()
	publicHeaders(w, "60")
	return FacetsResponse{
		Categories:   c.Pipeline().CategoryChips(snap),
		Institutions: query.InstitutionChips(snap),
	}, nil
}

func (ws *WebServer) ToggleFavorite(w http.ResponseWriter, r *http.Request, sessionId int) (any, error) {
	col, err := ws.collection(r)
	if err != nil {
		return nil, err
	}
	id, err := entryId(r)
	if err != nil {
		return nil, err
	}
	c := col.Catalogue
	if _, ok := c.Get(id); !ok {
		return nil, common.NewStatusError(http.StatusNotFound, catalogue.ErrUnknownEntry)
	}
	on, list := ws.Favorites.Toggle(sessionId, c.Name(), id)
	noFavoriteToggles.Inc()
	noCacheHeaders(w)
	return FavoriteResponse{Id: id, Favorite: on, Ids: list.ToSlice()}, nil
}

func (ws *WebServer) Session(w http.ResponseWriter, r *http.Request, sessionId int) (any, error) {
	noCacheHeaders(w)
	return SessionResponse{Session: ws.Sessions.HasSession(r.Context(), r)}, nil
}

// Status reports provenance per catalogue and whether each remote answers.
func (ws *WebServer) Status(w http.ResponseWriter, r *http.Request, sessionId int) (any, error) {
	ret := StatusResponse{
		Catalogues: make([]catalogue.Status, 0, len(ws.Collections)),
		Remotes:    make(map[string]RemoteStatus),
	}
	for _, name := range ws.names() {
		col := ws.Collections[name]
		ret.Catalogues = append(ret.Catalogues, col.Catalogue.Status())
		if col.Remote == nil {
			continue
		}
		status := RemoteStatus{Reachable: true}
		if err := col.Remote.Ping(r.Context()); err != nil {
			status = RemoteStatus{Error: err.Error()}
		}
		ret.Remotes[name] = status
	}
	noCacheHeaders(w)
	return ret, nil
}

func (ws *WebServer) ClientHandler() *http.ServeMux {
	srv := http.NewServeMux()
	srv.HandleFunc("GET /session", common.JsonHandler(ws.Tracking, ws.Session))
	srv.HandleFunc("GET /status", common.JsonHandler(ws.Tracking, ws.Status))
	srv.HandleFunc("GET /{catalogue}/entries", common.JsonHandler(ws.Tracking, ws.Entries))
	srv.HandleFunc("GET /{catalogue}/entries/{id}", common.JsonHandler(ws.Tracking, ws.GetEntry))
	srv.HandleFunc("GET /{catalogue}/facets", common.JsonHandler(ws.Tracking, ws.Facets))
	srv.HandleFunc("POST /{catalogue}/favorites/{id}", common.JsonHandler(ws.Tracking, ws.ToggleFavorite))
	srv.HandleFunc("OPTIONS /", common.RespondToOptions)
	return srv
}
