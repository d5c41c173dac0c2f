package storage

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/matst80/plat-finder/pkg/types"
)

// RedisOverrideStore keeps image overrides in a redis hash per collection,
// reads are served from a short lived local cache.
type RedisOverrideStore struct {
	client *redis.Client
	key    string
	local  *cache.Cache
}

func NewRedisOverrideStore(addr, password string, db int, collection string) *RedisOverrideStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisOverrideStoreFromClient(rdb, collection)
}

func NewRedisOverrideStoreFromClient(client *redis.Client, collection string) *RedisOverrideStore {
	return &RedisOverrideStore{
		client: client,
		key:    "platfinder:overrides:" + collection,
		local:  cache.New(time.Minute, 2*time.Minute),
	}
}

func field(id types.EntryId) string {
	return strconv.FormatUint(uint64(id), 10)
}

func (r *RedisOverrideStore) Put(ctx context.Context, id types.EntryId, url string) error {
	if err := r.client.HSet(ctx, r.key, field(id), url).Err(); err != nil {
		return err
	}
	r.local.Set(field(id), url, cache.DefaultExpiration)
	return nil
}

func (r *RedisOverrideStore) Get(ctx context.Context, id types.EntryId) (string, bool, error) {
	if v, ok := r.local.Get(field(id)); ok {
		return v.(string), true, nil
	}
	url, err := r.client.HGet(ctx, r.key, field(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	r.local.Set(field(id), url, cache.DefaultExpiration)
	return url, true, nil
}

func (r *RedisOverrideStore) All(ctx context.Context) (map[types.EntryId]string, error) {
	raw, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, err
	}
	ret := parseIds(raw)
	for id, url := range ret {
		r.local.Set(field(id), url, cache.DefaultExpiration)
	}
	return ret, nil
}

func (r *RedisOverrideStore) Clear(ctx context.Context) error {
	r.local.Flush()
	return r.client.Del(ctx, r.key).Err()
}

func (r *RedisOverrideStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisOverrideStore) Close() error {
	return r.client.Close()
}
