package catalogue

import (
	"context"
	"fmt"
	"log"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matst80/plat-finder/pkg/index"
	"github.com/matst80/plat-finder/pkg/query"
	"github.com/matst80/plat-finder/pkg/types"
)

type Options struct {
	Fetcher      Fetcher
	Uploader     Uploader
	ImageWriter  ImageWriter
	Overrides    types.OverrideStore
	Assets       AssetLocator
	Tracking     types.Tracking
	Pipeline     *query.Pipeline
	FetchOptions types.FetchOptions
}

type Status struct {
	Name        string           `json:"name"`
	Source      types.DataSource `json:"source"`
	Count       int              `json:"count"`
	Overrides   int              `json:"overrides"`
	LastError   string           `json:"lastError,omitempty"`
	LastRefresh time.Time        `json:"lastRefresh"`
}

// Catalogue owns one collection and its indexes. The snapshot is replaced as a
// whole, image overrides are layered on top until the next live refresh.
type Catalogue struct {
	name     string
	bundled  []types.Entry
	opts     Options
	pipeline *query.Pipeline

	snapshot atomic.Pointer[index.Snapshot]
	mounted  atomic.Bool
	ctx      context.Context
	cancel   context.CancelFunc

	// serializes refresh, upload and migration
	work sync.Mutex

	mu          sync.RWMutex
	overrides   map[types.EntryId]string
	lastError   string
	lastRefresh time.Time
}

// New mounts a catalogue showing the bundled list right away. Persisted
// overrides are loaded when a store is configured, failures are logged.
func New(ctx context.Context, name string, bundled []types.Entry, opts Options) *Catalogue {
	if opts.Pipeline == nil {
		opts.Pipeline = query.DefaultPipeline()
	}
	if opts.FetchOptions.Limit == 0 {
		opts.FetchOptions = types.DefaultFetchOptions()
	}
	c := &Catalogue{
		name:      name,
		bundled:   bundled,
		opts:      opts,
		pipeline:  opts.Pipeline,
		overrides: make(map[types.EntryId]string),
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.mounted.Store(true)
	c.swap(index.NewSnapshot(bundled, types.SourceFallback, c.pipeline.Categories.Known))

	if opts.Overrides != nil {
		stored, err := opts.Overrides.All(ctx)
		if err != nil {
			log.Printf("[%s] Failed to load image overrides: %v", name, err)
		} else {
			c.mu.Lock()
			maps.Copy(c.overrides, stored)
			c.mu.Unlock()
		}
	}
	return c
}

func (c *Catalogue) Name() string {
	return c.name
}

func (c *Catalogue) Pipeline() *query.Pipeline {
	return c.pipeline
}

func (c *Catalogue) Snapshot() *index.Snapshot {
	return c.snapshot.Load()
}

func (c *Catalogue) IsMounted() bool {
	return c.mounted.Load()
}

// Close unmounts the catalogue. Work in flight is cancelled and any result
// arriving afterwards is dropped.
func (c *Catalogue) Close() {
	if c.mounted.CompareAndSwap(true, false) {
		c.cancel()
	}
}

func (c *Catalogue) swap(snap *index.Snapshot) {
	c.snapshot.Store(snap)
	totalEntries.WithLabelValues(c.name).Set(float64(snap.Len()))
}

// bind returns a context cancelled by either the caller or Close.
func (c *Catalogue) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Refresh fetches the remote collection. At least one row replaces the
// snapshot and clears overrides, an empty result reverts to the bundled list.
// A fetch error keeps the current snapshot and ends up in Status, only
// ErrUnmounted is returned.
func (c *Catalogue) Refresh(ctx context.Context) error {
	if !c.mounted.Load() {
		return ErrUnmounted
	}
	c.work.Lock()
	defer c.work.Unlock()

	var rows []types.Entry
	var err error
	if c.opts.Fetcher != nil {
		fetchCtx, done := c.bind(ctx)
		rows, err = c.opts.Fetcher.FetchEntries(fetchCtx, c.opts.FetchOptions)
		done()
	}
	if !c.mounted.Load() {
		return ErrUnmounted
	}
	if err == nil && len(rows) > 0 && c.opts.Overrides != nil {
		if clearErr := c.opts.Overrides.Clear(ctx); clearErr != nil {
			log.Printf("[%s] Failed to clear stored image overrides: %v", c.name, clearErr)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastRefresh = time.Now()
	switch {
	case err != nil:
		log.Printf("[%s] Failed to fetch entries, keeping %s list: %v", c.name, c.snapshot.Load().Source, err)
		c.lastError = err.Error()
	case len(rows) == 0:
		c.lastError = ""
		c.swap(index.NewSnapshot(c.bundled, types.SourceFallback, c.pipeline.Categories.Known))
	default:
		c.lastError = ""
		clear(c.overrides)
		c.swap(index.NewSnapshot(rows, types.SourceLive, c.pipeline.Categories.Known))
	}
	source := c.snapshot.Load().Source
	refreshes.WithLabelValues(c.name, string(source)).Inc()
	log.Printf("[%s] Refreshed, %d entries from %s", c.name, c.snapshot.Load().Len(), source)
	return nil
}

// Query runs the pipeline over the current snapshot.
func (c *Catalogue) Query(state types.QueryState, favorites *types.IdList) []*types.Entry {
	return c.pipeline.Run(c.snapshot.Load(), state, favorites)
}

func (c *Catalogue) Get(id types.EntryId) (*types.Entry, bool) {
	return c.snapshot.Load().Get(id)
}

func (c *Catalogue) Override(id types.EntryId) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	url, ok := c.overrides[id]
	return url, ok
}

// Image resolves the image for an entry through the current overrides.
func (c *Catalogue) Image(e *types.Entry) types.Asset {
	if e == nil {
		return types.PlaceholderAsset()
	}
	override, _ := c.Override(e.Id)
	return types.ResolveImage(e, override)
}

func (c *Catalogue) Status() Status {
	snap := c.snapshot.Load()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Status{
		Name:        c.name,
		Source:      snap.Source,
		Count:       snap.Len(),
		Overrides:   len(c.overrides),
		LastError:   c.lastError,
		LastRefresh: c.lastRefresh,
	}
}

func (c *Catalogue) applyOverride(ctx context.Context, id types.EntryId, url string) {
	c.mu.Lock()
	c.overrides[id] = url
	c.mu.Unlock()
	if c.opts.Overrides != nil {
		if err := c.opts.Overrides.Put(ctx, id, url); err != nil {
			log.Printf("[%s] Failed to persist image override for %d: %v", c.name, id, err)
		}
	}
}

// upload stores one file and writes the url back to the remote record.
func (c *Catalogue) upload(ctx context.Context, id types.EntryId, file types.FileHandle) (string, error) {
	url, err := c.opts.Uploader.Upload(ctx, id, file)
	if err != nil {
		uploads.WithLabelValues(c.name, "failed").Inc()
		return "", fmt.Errorf("upload %d: %w", id, err)
	}
	if c.opts.ImageWriter != nil {
		if err := c.opts.ImageWriter.SetImageUrl(ctx, id, url); err != nil {
			uploads.WithLabelValues(c.name, "failed").Inc()
			return "", fmt.Errorf("save image url for %d: %w", id, err)
		}
	}
	uploads.WithLabelValues(c.name, "ok").Inc()
	return url, nil
}

// SetImage uploads a replacement image for one entry and layers the new url
// on top of the collection without refetching it.
func (c *Catalogue) SetImage(ctx context.Context, id types.EntryId, file types.FileHandle) (string, error) {
	if !c.mounted.Load() {
		return "", ErrUnmounted
	}
	if c.opts.Uploader == nil {
		return "", ErrNoUploader
	}
	if _, ok := c.Get(id); !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownEntry, id)
	}
	c.work.Lock()
	defer c.work.Unlock()

	uploadCtx, done := c.bind(ctx)
	defer done()
	url, err := c.upload(uploadCtx, id, file)
	if !c.mounted.Load() {
		return "", ErrUnmounted
	}
	if err != nil {
		log.Printf("[%s] Image upload failed: %v", c.name, err)
		return "", err
	}
	c.applyOverride(uploadCtx, id, url)
	return url, nil
}
