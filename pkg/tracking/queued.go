package tracking

import (
	"net/http"
	"time"

	"github.com/matst80/plat-finder/pkg/common"
	"github.com/matst80/plat-finder/pkg/types"
)

type queuedEvent struct {
	sessionId int
	event     types.TrackingEvent
}

// QueuedTracking moves event delivery off the request path. Sessions are
// forwarded directly since they need the live request.
type QueuedTracking struct {
	inner types.Tracking
	queue *common.QueueHandler[queuedEvent]
}

func NewQueuedTracking(inner types.Tracking, chunkSize int, interval time.Duration) *QueuedTracking {
	return &QueuedTracking{
		inner: inner,
		queue: common.NewQueueHandler(func(items []queuedEvent) {
			for _, item := range items {
				inner.TrackEvent(item.sessionId, item.event)
			}
		}, chunkSize, interval),
	}
}

func (q *QueuedTracking) TrackSession(sessionId int, r *http.Request) {
	q.inner.TrackSession(sessionId, r)
}

func (q *QueuedTracking) TrackEvent(sessionId int, event types.TrackingEvent) {
	q.queue.Add(queuedEvent{sessionId: sessionId, event: event})
}

// Close flushes pending events before closing the wrapped tracker.
func (q *QueuedTracking) Close() error {
	q.queue.Close()
	return q.inner.Close()
}
