package storage

import (
	"context"
	"errors"
	"maps"
	"os"
	"strconv"
	"sync"

	"github.com/matst80/plat-finder/pkg/types"
)

type MemoryOverrideStore struct {
	mu   sync.RWMutex
	data map[types.EntryId]string
}

func NewMemoryOverrideStore() *MemoryOverrideStore {
	return &MemoryOverrideStore{data: make(map[types.EntryId]string)}
}

func (m *MemoryOverrideStore) Put(ctx context.Context, id types.EntryId, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[id] = url
	return nil
}

func (m *MemoryOverrideStore) Get(ctx context.Context, id types.EntryId) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[id]
	return v, ok, nil
}

func (m *MemoryOverrideStore) All(ctx context.Context) (map[types.EntryId]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.data), nil
}

func (m *MemoryOverrideStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.data)
	return nil
}

// FileOverrideStore keeps overrides in a json file next to the other
// collection files.
type FileOverrideStore struct {
	mu   sync.Mutex
	disk *DiskStorage
	name string
}

func NewFileOverrideStore(disk *DiskStorage) *FileOverrideStore {
	return &FileOverrideStore{disk: disk, name: "image-overrides.json"}
}

func (f *FileOverrideStore) load() (map[types.EntryId]string, error) {
	raw := make(map[string]string)
	if err := f.disk.LoadJson(&raw, f.name); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[types.EntryId]string), nil
		}
		return nil, err
	}
	return parseIds(raw), nil
}

func (f *FileOverrideStore) Put(ctx context.Context, id types.EntryId, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, err := f.load()
	if err != nil {
		return err
	}
	current[id] = url
	raw := make(map[string]string, len(current))
	for k, v := range current {
		raw[strconv.FormatUint(uint64(k), 10)] = v
	}
	return f.disk.SaveJson(raw, f.name)
}

func (f *FileOverrideStore) Get(ctx context.Context, id types.EntryId) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := current[id]
	return v, ok, nil
}

func (f *FileOverrideStore) All(ctx context.Context) (map[types.EntryId]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

func (f *FileOverrideStore) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.disk.SaveJson(map[string]string{}, f.name)
}

func parseIds(raw map[string]string) map[types.EntryId]string {
	ret := make(map[types.EntryId]string, len(raw))
	for k, v := range raw {
		id, err := strconv.ParseUint(k, 10, 32)
		if err != nil {
			continue
		}
		ret[types.EntryId(id)] = v
	}
	return ret
}
