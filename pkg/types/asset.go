package types

import (
	"strings"

	"github.com/matst80/plat-finder/pkg/common/jsoncompat"
)

type AssetKind uint8

const (
	AssetNone AssetKind = iota
	AssetBundled
	AssetRemote
)

// PlaceholderHandle is the bundled asset used when nothing else resolves.
const PlaceholderHandle = "icon.png"

// Asset is an image reference: a bundled file handle, a remote url or nothing.
type Asset struct {
	Kind   AssetKind
	Handle string
	Url    string
}

func BundledAsset(handle string) Asset {
	if handle == "" {
		return Asset{}
	}
	return Asset{Kind: AssetBundled, Handle: handle}
}

func RemoteAsset(url string) Asset {
	if url == "" {
		return Asset{}
	}
	return Asset{Kind: AssetRemote, Url: url}
}

func PlaceholderAsset() Asset {
	return Asset{Kind: AssetBundled, Handle: PlaceholderHandle}
}

func AssetFromReference(ref string) Asset {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return RemoteAsset(ref)
	}
	return BundledAsset(ref)
}

func (a Asset) IsNone() bool {
	return a.Kind == AssetNone
}

func (a Asset) String() string {
	switch a.Kind {
	case AssetBundled:
		return "bundled:" + a.Handle
	case AssetRemote:
		return a.Url
	}
	return ""
}

type jsonAsset struct {
	Kind   string `json:"kind"`
	Handle string `json:"handle,omitempty"`
	Url    string `json:"url,omitempty"`
}

func (a Asset) MarshalJSON() ([]byte, error) {
	ret := jsonAsset{Kind: "none"}
	switch a.Kind {
	case AssetBundled:
		ret.Kind = "bundled"
		ret.Handle = a.Handle
	case AssetRemote:
		ret.Kind = "remote"
		ret.Url = a.Url
	}
	return jsoncompat.Marshal(ret)
}

func (a *Asset) UnmarshalJSON(data []byte) error {
	var tmp jsonAsset
	if err := jsoncompat.Unmarshal(data, &tmp); err != nil {
		return err
	}
	switch tmp.Kind {
	case "bundled":
		*a = BundledAsset(tmp.Handle)
	case "remote":
		*a = RemoteAsset(tmp.Url)
	default:
		*a = Asset{}
	}
	return nil
}

// ResolveImage picks the image to show for an entry. An override set after a
// manual upload wins, then the remote image_url, then the bundled asset and
// finally the placeholder.
func ResolveImage(e *Entry, override string) Asset {
	if override != "" {
		return RemoteAsset(override)
	}
	if e == nil {
		return PlaceholderAsset()
	}
	if e.ImageUrl != "" {
		return RemoteAsset(e.ImageUrl)
	}
	if !e.Image.IsNone() {
		return e.Image
	}
	return PlaceholderAsset()
}
