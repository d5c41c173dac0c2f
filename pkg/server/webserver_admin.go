package server

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/matst80/plat-finder/pkg/catalogue"
	"github.com/matst80/plat-finder/pkg/common"
	"github.com/matst80/plat-finder/pkg/storage"
	"github.com/matst80/plat-finder/pkg/types"
)

func (ws *WebServer) Refresh(w http.ResponseWriter, r *http.Request, sessionId int) (any, error) {
	col, err := ws.collection(r)
	if err != nil {
		return nil, err
	}
	if err = col.Catalogue.Refresh(r.Context()); err != nil {
		return nil, catalogueError(err)
	}
	return col.Catalogue.Status(), nil
}

// saveUpload writes the multipart file to a temp file, keeping the extension.
func (ws *WebServer) saveUpload(r *http.Request) (types.FileHandle, func(), error) {
	if err := r.ParseMultipartForm(ws.MaxUploadMb << 20); err != nil {
		return "", nil, common.NewStatusError(http.StatusBadRequest, err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, common.NewStatusError(http.StatusBadRequest, err)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	tmp, err := os.CreateTemp(ws.UploadDir, "plat-upload-*"+ext)
	if err != nil {
		return "", nil, err
	}
	cleanup := func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
		if err := os.Remove(tmp.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("Failed to remove upload %s: %v", tmp.Name(), err)
		}
	}
	if _, err = io.Copy(tmp, file); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", nil, err
	}
	if err = tmp.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return types.FileHandle(tmp.Name()), cleanup, nil
}

func (ws *WebServer) SetImage(w http.ResponseWriter, r *http.Request, sessionId int) (any, error) {
	col, err := ws.collection(r)
	if err != nil {
		return nil, err
	}
	id, err := entryId(r)
	if err != nil {
		return nil, err
	}
	if _, ok := col.Catalogue.Get(id); !ok {
		return nil, common.NewStatusError(http.StatusNotFound, fmt.Errorf("%w: %d", catalogue.ErrUnknownEntry, id))
	}
	file, cleanup, err := ws.saveUpload(r)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	url, err := col.Catalogue.SetImage(r.Context(), id, file)
	if err != nil {
		return nil, catalogueError(err)
	}
	return ImageResponse{Id: id, Url: url}, nil
}

func (ws *WebServer) Migrate(w http.ResponseWriter, r *http.Request, sessionId int) (any, error) {
	col, err := ws.collection(r)
	if err != nil {
		return nil, err
	}
	report, err := col.Catalogue.MigrateAll(r.Context())
	if err != nil {
		return nil, catalogueError(err)
	}
	if col.Reports != nil {
		if err := col.Reports.SaveMigrationReport(report); err != nil {
			log.Printf("[%s] Failed to save migration report: %v", col.Catalogue.Name(), err)
		}
	}
	return report, nil
}

func (ws *WebServer) LastMigration(w http.ResponseWriter, r *http.Request, sessionId int) (any, error) {
	col, err := ws.collection(r)
	if err != nil {
		return nil, err
	}
	if col.Reports == nil {
		return nil, common.NewStatusError(http.StatusNotFound, storage.ErrNotFound)
	}
	report := &catalogue.MigrationReport{}
	if err = col.Reports.LoadMigrationReport(report); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, common.NewStatusError(http.StatusNotFound, err)
		}
		return nil, err
	}
	return report, nil
}

func (ws *WebServer) AdminHandler() *http.ServeMux {
	srv := http.NewServeMux()
	secured := func(fn func(w http.ResponseWriter, r *http.Request, sessionId int) (any, error)) http.HandlerFunc {
		return ws.Auth.Middleware(common.JsonHandler(ws.Tracking, fn))
	}
	srv.HandleFunc("GET /login", ws.Auth.Login)
	srv.HandleFunc("GET /logout", ws.Auth.Logout)
	srv.HandleFunc("GET /callback", ws.Auth.AuthCallback)
	srv.HandleFunc("GET /user", ws.Auth.User)
	srv.HandleFunc("POST /{catalogue}/refresh", secured(ws.Refresh))
	srv.HandleFunc("POST /{catalogue}/entries/{id}/image", secured(ws.SetImage))
	srv.HandleFunc("POST /{catalogue}/migrate", secured(ws.Migrate))
	srv.HandleFunc("GET /{catalogue}/migrate", secured(ws.LastMigration))
	return srv
}
