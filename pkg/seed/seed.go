package seed

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matst80/plat-finder/pkg/common/jsoncompat"
	"github.com/matst80/plat-finder/pkg/types"
)

//go:embed designers.json
var designersJson []byte

// Designers returns the bundled designer entries shown before the remote list
// has loaded.
func Designers() ([]types.Entry, error) {
	var raw []types.RawEntry
	if err := jsoncompat.Unmarshal(designersJson, &raw); err != nil {
		return nil, fmt.Errorf("decode bundled designers: %w", err)
	}
	return types.EntriesFromRaw(raw), nil
}

// Load reads a seed list from disk in the same format as the bundled one.
func Load(fileName string) ([]types.Entry, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	var raw []types.RawEntry
	if err := jsoncompat.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", fileName, err)
	}
	return types.EntriesFromRaw(raw), nil
}

// Entries returns the list in fileName, or the bundled designers when no
// file is given.
func Entries(fileName string) ([]types.Entry, error) {
	if fileName == "" {
		return Designers()
	}
	return Load(fileName)
}

// Bundle resolves bundled asset handles to files below Root.
type Bundle struct {
	Root string
}

func (b Bundle) Locate(handle string) (types.FileHandle, error) {
	clean := filepath.Clean("/" + handle)
	if handle == "" || strings.Contains(handle, "..") {
		return "", fmt.Errorf("invalid asset handle %q", handle)
	}
	fileName := filepath.Join(b.Root, clean)
	info, err := os.Stat(fileName)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("asset %s is a directory", handle)
	}
	return types.FileHandle(fileName), nil
}
