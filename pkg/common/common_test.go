package common

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matst80/plat-finder/pkg/common/jsoncompat"
	"github.com/matst80/plat-finder/pkg/types"
)

func TestLoadTimeoutConfig(t *testing.T) {
	t.Setenv("READ_TIMEOUT", "9")
	t.Setenv("WRITE_TIMEOUT", "nope")
	t.Setenv("IDLE_TIMEOUT", "-1")

	cfg := LoadTimeoutConfig(DefaultTimeoutConfig())
	assert.Equal(t, 9*time.Second, cfg.Read)
	assert.Equal(t, 60*time.Second, cfg.Write)
	assert.Equal(t, 120*time.Second, cfg.Idle)
}

func TestShutdownRunsHooksInOrder(t *testing.T) {
	order := make([]int, 0)
	hooks := []ShutdownHook{
		func(ctx context.Context) error { order = append(order, 1); return nil },
		nil,
		func(ctx context.Context) error { order = append(order, 2); return errors.New("ignored") },
	}
	srv := NewServer("127.0.0.1:0", http.NotFoundHandler(), DefaultTimeoutConfig())

	require.NoError(t, Shutdown(DefaultTimeoutConfig(), hooks, srv))
	assert.Equal(t, []int{1, 2}, order)
}

func TestHandleSessionCookie(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	id := HandleSessionCookie(nil, w, r)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookies[0])
	assert.Equal(t, id, HandleSessionCookie(nil, w, r))
	assert.Empty(t, w.Result().Cookies())
}

func TestJsonHandler(t *testing.T) {
	h := JsonHandler(nil, func(w http.ResponseWriter, r *http.Request, sessionId int) (any, error) {
		if r.URL.Query().Get("fail") != "" {
			return nil, NewStatusError(http.StatusNotFound, errors.New("missing"))
		}
		return map[string]int{"count": 3}, nil
	})

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]int
	require.NoError(t, jsoncompat.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 3, body["count"])

	w = httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/?fail=1", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "missing")

	w = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodOptions, "/", nil)
	r.Header.Set("Origin", "https://plat.africa")
	h(w, r)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "https://plat.africa", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestQueueHandlerChunks(t *testing.T) {
	var mu sync.Mutex
	batches := make([][]types.EntryId, 0)
	q := NewQueueHandler(func(items []types.EntryId) {
		mu.Lock()
		defer mu.Unlock()
		batches = append(batches, items)
	}, 2, time.Hour)

	q.Add(1)
	q.Add(2, 3)
	q.Add(4, 5)
	q.Close()
	q.Close()

	mu.Lock()
	defer mu.Unlock()
	total := make([]types.EntryId, 0)
	for _, b := range batches {
		assert.LessOrEqual(t, len(b), 2)
		total = append(total, b...)
	}
	assert.Equal(t, []types.EntryId{1, 2, 3, 4, 5}, total)
	assert.Equal(t, 0, q.Len())
}
