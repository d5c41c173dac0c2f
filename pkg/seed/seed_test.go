package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matst80/plat-finder/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDesigners(t *testing.T) {
	entries, err := Designers()
	require.NoError(t, err)
	require.Len(t, entries, 29)

	seen := make(map[types.EntryId]bool)
	for _, e := range entries {
		assert.False(t, seen[e.Id], "duplicate id %d", e.Id)
		seen[e.Id] = true
		assert.Equal(t, types.AssetBundled, e.Image.Kind, "entry %d", e.Id)
		assert.Contains(t, []types.Category{types.CategoryProfessional, types.CategoryStudent}, e.Category)
	}

	first := entries[0]
	assert.Equal(t, types.EntryId(66), first.Id)
	assert.Equal(t, "Eclipse", first.Title)
	assert.Equal(t, "designers/P66-Professional-NECKPIECE-PBBB0833-1.jpg", first.Image.Handle)
}

func TestBundleLocate(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "designers"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "designers", "P2.jpg"), []byte("x"), 0o644))

	b := Bundle{Root: root}
	file, err := b.Locate("designers/P2.jpg")
	require.NoError(t, err)
	assert.Equal(t, types.FileHandle(filepath.Join(root, "designers", "P2.jpg")), file)

	_, err = b.Locate("designers/missing.jpg")
	assert.Error(t, err)
	_, err = b.Locate("../etc/passwd")
	assert.Error(t, err)
	_, err = b.Locate("designers")
	assert.Error(t, err)
	_, err = b.Locate("")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "auction.json")
	require.NoError(t, os.WriteFile(fileName, []byte(`[{"entryNo": 5, "title": "Lot", "img": "https://cdn.test/5.jpg"}]`), 0o644))
	entries, err := Load(fileName)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, types.AssetRemote, entries[0].Image.Kind)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestEntries(t *testing.T) {
	bundled, err := Entries("")
	require.NoError(t, err)
	assert.Len(t, bundled, 29)

	fileName := filepath.Join(t.TempDir(), "designers.json")
	require.NoError(t, os.WriteFile(fileName, []byte(`[{"entryNo": 9, "title": "Halo", "img": "designers/A9.jpg"}]`), 0o644))
	entries, err := Entries(fileName)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, types.BundledAsset("designers/A9.jpg"), entries[0].Image)
}
