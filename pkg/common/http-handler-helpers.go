package common

import (
	"errors"
	"log"
	"net/http"

	"github.com/matst80/plat-finder/pkg/common/jsoncompat"
	"github.com/matst80/plat-finder/pkg/types"
)

// StatusError carries the http status a handler wants to answer with.
type StatusError struct {
	Status int
	Err    error
}

func (e *StatusError) Error() string {
	return e.Err.Error()
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

func NewStatusError(status int, err error) error {
	return &StatusError{Status: status, Err: err}
}

func statusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return http.StatusInternalServerError
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func WriteJson(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return jsoncompat.Encode(w, data)
}

func WriteError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		log.Printf("Error handling request: %v", err)
	}
	if werr := WriteJson(w, status, ErrorResponse{Error: err.Error()}); werr != nil {
		log.Printf("Failed to write error response: %v", werr)
	}
}

// JsonHandler answers OPTIONS, assigns a session and writes whatever fn
// returns as json. A nil result with no error means fn wrote the response.
func JsonHandler(trk types.Tracking, fn func(w http.ResponseWriter, r *http.Request, sessionId int) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			RespondToOptions(w, r)
			return
		}
		sessionId := HandleSessionCookie(trk, w, r)
		if origin := r.Header.Get("Origin"); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		data, err := fn(w, r, sessionId)
		if err != nil {
			WriteError(w, err)
			return
		}
		if data == nil {
			return
		}
		if err = WriteJson(w, http.StatusOK, data); err != nil {
			log.Printf("Failed to write response: %v", err)
		}
	}
}

func RespondToOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	origin := r.Header.Get("Origin")
	if origin != "" {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Max-Age", "86400")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
	w.Header().Set("Age", "0")
	w.WriteHeader(http.StatusAccepted)
}
