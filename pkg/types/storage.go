package types

import "context"

// DataSource tags where the working collection came from.
type DataSource string

const (
	SourceFallback DataSource = "fallback"
	SourceLive     DataSource = "live"
)

// FileHandle points at a local file that can be uploaded.
type FileHandle string

type FetchOptions struct {
	Limit  int
	Status string
	Sort   string
}

func DefaultFetchOptions() FetchOptions {
	return FetchOptions{
		Limit:  200,
		Status: "active",
		Sort:   "-id",
	}
}

type StorageProvider interface {
	SaveJson(data any, filename string) error
	LoadJson(data any, filename string) error
	SaveGzippedJson(data any, filename string) error
	LoadGzippedJson(data any, filename string) error
}

type OverrideStore interface {
	Put(ctx context.Context, id EntryId, url string) error
	Get(ctx context.Context, id EntryId) (string, bool, error)
	All(ctx context.Context) (map[EntryId]string, error)
	Clear(ctx context.Context) error
}
