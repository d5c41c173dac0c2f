package server

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/matst80/plat-finder/pkg/auth"
	"github.com/matst80/plat-finder/pkg/catalogue"
	"github.com/matst80/plat-finder/pkg/common"
	"github.com/matst80/plat-finder/pkg/types"
)

type WebServer struct {
	Collections map[string]*Collection
	Tracking    types.Tracking
	Sessions    auth.SessionChecker
	Auth        auth.AuthHandler
	Favorites   *FavoriteSessions
	// UploadDir holds multipart uploads while they are sent on.
	UploadDir   string
	MaxUploadMb int64
}

func NewWebServer(tracking types.Tracking, sessions auth.SessionChecker, authHandler auth.AuthHandler) *WebServer {
	if sessions == nil {
		sessions = auth.NoSessions{}
	}
	if authHandler == nil {
		authHandler = &auth.MockAuth{}
	}
	return &WebServer{
		Collections: make(map[string]*Collection),
		Tracking:    tracking,
		Sessions:    sessions,
		Auth:        authHandler,
		Favorites:   NewFavoriteSessions(24 * time.Hour),
		MaxUploadMb: 16,
	}
}

func (ws *WebServer) AddCollection(c *Collection) {
	ws.Collections[c.Catalogue.Name()] = c
}

func (ws *WebServer) names() []string {
	ret := make([]string, 0, len(ws.Collections))
	for name := range ws.Collections {
		ret = append(ret, name)
	}
	slices.Sort(ret)
	return ret
}

func (ws *WebServer) collection(r *http.Request) (*Collection, error) {
	name := r.PathValue("catalogue")
	c, ok := ws.Collections[name]
	if !ok {
		return nil, common.NewStatusError(http.StatusNotFound, fmt.Errorf("unknown catalogue %q", name))
	}
	return c, nil
}

func entryId(r *http.Request) (types.EntryId, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		return 0, common.NewStatusError(http.StatusBadRequest, fmt.Errorf("invalid id %q", r.PathValue("id")))
	}
	return types.EntryId(id), nil
}

// catalogueError maps catalogue failures to a response status.
func catalogueError(err error) error {
	switch {
	case errors.Is(err, catalogue.ErrUnknownEntry):
		return common.NewStatusError(http.StatusNotFound, err)
	case errors.Is(err, catalogue.ErrNoUploader):
		return common.NewStatusError(http.StatusNotImplemented, err)
	case errors.Is(err, catalogue.ErrUnmounted):
		return common.NewStatusError(http.StatusServiceUnavailable, err)
	}
	return common.NewStatusError(http.StatusBadGateway, err)
}

func publicHeaders(w http.ResponseWriter, cacheTime string) {
	w.Header().Set("Cache-Control", "public, max-age="+cacheTime)
}

func noCacheHeaders(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
}

func (ws *WebServer) Handle() *http.ServeMux {
	srv := http.NewServeMux()
	srv.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	srv.Handle("/api/", http.StripPrefix("/api", ws.ClientHandler()))
	srv.Handle("/admin/", http.StripPrefix("/admin", ws.AdminHandler()))
	return srv
}
