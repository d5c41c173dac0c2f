package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/matst80/plat-finder/pkg/types"
)

// FavoriteSessions keeps favorites per client session and catalogue. They
// live in memory only and expire with the session.
type FavoriteSessions struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewFavoriteSessions(ttl time.Duration) *FavoriteSessions {
	return &FavoriteSessions{cache: cache.New(ttl, ttl*2)}
}

func favoritesKey(sessionId int, catalogue string) string {
	return fmt.Sprintf("%d:%s", sessionId, catalogue)
}

// Get returns a copy of the session's favorites, empty when none are stored.
func (f *FavoriteSessions) Get(sessionId int, catalogue string) *types.IdList {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.cache.Get(favoritesKey(sessionId, catalogue)); ok {
		return v.(*types.IdList).Clone()
	}
	return types.NewIdList()
}

// Toggle flips membership of id and reports whether it is now a favorite.
func (f *FavoriteSessions) Toggle(sessionId int, catalogue string, id types.EntryId) (bool, *types.IdList) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := favoritesKey(sessionId, catalogue)
	list := types.NewIdList()
	if v, ok := f.cache.Get(key); ok {
		list = v.(*types.IdList)
	}
	on := list.Toggle(id)
	f.cache.SetDefault(key, list)
	return on, list.Clone()
}
