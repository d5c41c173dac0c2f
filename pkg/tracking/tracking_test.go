package tracking

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/matst80/plat-finder/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRabbitTrackingPayloads(t *testing.T) {
	sent := make([]any, 0)
	rt := &RabbitTracking{prefix: "plat", send: func(data any) error {
		sent = append(sent, data)
		return nil
	}}

	req := httptest.NewRequest("GET", "/api/designers/entries", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	req.Header.Set("Accept-Language", "en-ZA")
	rt.TrackSession(7, req)
	rt.TrackEvent(7, types.TrackingEvent{Name: "designer_open", Params: map[string]string{"entry_id": "66", "cat": "P"}})

	require.Len(t, sent, 2)
	session, ok := sent[0].(Session)
	require.True(t, ok)
	assert.Equal(t, "10.0.0.1", session.Ip)
	assert.Equal(t, "en-ZA", session.Language)
	assert.Equal(t, 7, session.SessionId)

	action, ok := sent[1].(*ActionEvent)
	require.True(t, ok)
	assert.Equal(t, "designer_open", action.Action)
	assert.Equal(t, "66", action.Params["entry_id"])
	assert.Equal(t, uint16(6), action.Event)
	assert.Equal(t, "plat", action.Context)
}

func TestCloseWithoutConnection(t *testing.T) {
	assert.NoError(t, (&RabbitTracking{}).Close())
	assert.NoError(t, LogTracking{}.Close())
}

type memoryTracking struct {
	mu     sync.Mutex
	events []types.TrackingEvent
	closed bool
}

func (m *memoryTracking) TrackSession(int, *http.Request) {}

func (m *memoryTracking) TrackEvent(_ int, event types.TrackingEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *memoryTracking) Close() error {
	m.closed = true
	return nil
}

func TestQueuedTrackingFlushesOnClose(t *testing.T) {
	inner := &memoryTracking{}
	q := NewQueuedTracking(inner, 10, time.Hour)
	q.TrackEvent(1, types.TrackingEvent{Name: "designer_open"})
	q.TrackEvent(1, types.TrackingEvent{Name: "migrate_images_tap"})

	require.NoError(t, q.Close())
	assert.True(t, inner.closed)
	require.Len(t, inner.events, 2)
	assert.Equal(t, "designer_open", inner.events[0].Name)
	assert.Equal(t, "migrate_images_tap", inner.events[1].Name)
}
