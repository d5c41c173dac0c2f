package catalogue

import (
	"context"
	"errors"

	"github.com/matst80/plat-finder/pkg/types"
)

var (
	ErrUnmounted    = errors.New("catalogue is closed")
	ErrNoUploader   = errors.New("no uploader configured")
	ErrUnknownEntry = errors.New("unknown entry")
	ErrNoAsset      = errors.New("entry has no bundled asset")
)

// Fetcher loads the remote collection. Errors are recoverable, the catalogue
// falls back to the bundled list.
type Fetcher interface {
	FetchEntries(ctx context.Context, opts types.FetchOptions) ([]types.Entry, error)
}

// Uploader stores a local file and returns a durable public url. Each call is
// a single attempt.
type Uploader interface {
	Upload(ctx context.Context, id types.EntryId, file types.FileHandle) (string, error)
}

// ImageWriter persists a new image url on the remote record.
type ImageWriter interface {
	SetImageUrl(ctx context.Context, id types.EntryId, url string) error
}

// AssetLocator maps a bundled asset handle to a local file.
type AssetLocator interface {
	Locate(handle string) (types.FileHandle, error)
}
