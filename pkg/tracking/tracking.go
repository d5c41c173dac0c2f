package tracking

import (
	"log"
	"net/http"

	"github.com/matst80/plat-finder/pkg/types"
)

// LogTracking writes events to the log when no broker is configured.
type LogTracking struct{}

func (LogTracking) TrackSession(sessionId int, r *http.Request) {
	log.Printf("[screen] session %d %s", sessionId, r.URL.Path)
}

func (LogTracking) TrackEvent(sessionId int, event types.TrackingEvent) {
	log.Printf("[event] %s %v", event.Name, event.Params)
}

func (LogTracking) Close() error {
	return nil
}
