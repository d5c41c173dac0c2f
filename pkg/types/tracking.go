package types

import (
	"net/http"
)

type TrackingEvent struct {
	Name   string            `json:"name"`
	Params map[string]string `json:"params,omitempty"`
}

type Tracking interface {
	TrackSession(sessionId int, r *http.Request)
	TrackEvent(sessionId int, event TrackingEvent)
	Close() error
}
