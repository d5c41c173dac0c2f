package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matst80/plat-finder/pkg/catalogue"
	"github.com/matst80/plat-finder/pkg/seed"
	"github.com/matst80/plat-finder/pkg/storage"
	"github.com/matst80/plat-finder/pkg/types"
)

func TestConfigFromEnvAndFlags(t *testing.T) {
	t.Setenv("PLAT_SUPABASE_URL", "https://pieces.example.com")
	t.Setenv("PLAT_S3_BUCKET", "from-env")

	v := viper.New()
	cmd := &cobra.Command{Use: "test"}
	require.NoError(t, setupFlags(cmd, v))
	require.NoError(t, cmd.PersistentFlags().Parse([]string{"--s3-bucket", "from-flag", "--dry-run"}))

	cfg := loadConfig(v)
	assert.Equal(t, "https://pieces.example.com", cfg.SupabaseUrl)
	assert.Equal(t, "from-flag", cfg.S3.Bucket)
	assert.Equal(t, "designers", cfg.S3.Prefix)
	assert.Equal(t, "plat", cfg.RabbitPrefix)
	assert.True(t, cfg.DryRun)
}

func TestPendingSkipsOverridesAndMissingAssets(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "designers"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "designers", "a.jpg"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "designers", "b.jpg"), []byte("x"), 0o644))

	entries := []types.Entry{
		{Id: 1, Image: types.BundledAsset("designers/a.jpg")},
		{Id: 2, Image: types.BundledAsset("designers/b.jpg")},
		{Id: 3, Image: types.BundledAsset("designers/missing.jpg")},
		{Id: 4, Image: types.RemoteAsset("https://cdn/4.jpg")},
	}
	store := storage.NewMemoryOverrideStore()
	require.NoError(t, store.Put(context.Background(), 2, "https://cdn/2.jpg"))

	todo, err := pending(context.Background(), entries, store, seed.Bundle{Root: root})
	require.NoError(t, err)
	require.Len(t, todo, 1)
	assert.Equal(t, types.EntryId(1), todo[0].Id)
}

func TestRunImagesWritesReport(t *testing.T) {
	dataRoot := t.TempDir()
	cfg := Config{AssetRoot: t.TempDir(), DataRoot: dataRoot, PublicBaseUrl: "https://local"}

	// without bundled files every entry fails to locate its asset
	err := runImages(context.Background(), cfg)
	require.Error(t, err)

	report := &catalogue.MigrationReport{}
	require.NoError(t, storage.NewDiskStorage("designers", dataRoot).LoadMigrationReport(report))
	assert.Equal(t, "designers", report.Catalogue)
	assert.Equal(t, 0, report.Uploaded)
	assert.Positive(t, report.Failed)
}

func TestRunImagesUsesSeedFile(t *testing.T) {
	assets := t.TempDir()
	dataRoot := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(assets, "designers"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(assets, "designers", "P7.jpg"), []byte("jpeg"), 0o644))
	seedFile := filepath.Join(t.TempDir(), "designers.json")
	require.NoError(t, os.WriteFile(seedFile, []byte(`[{"entryNo": 7, "category": "P", "title": "Orbit", "img": "designers/P7.jpg"}]`), 0o644))

	cfg := Config{AssetRoot: assets, DataRoot: dataRoot, PublicBaseUrl: "https://local", SeedFile: seedFile}
	require.NoError(t, runImages(context.Background(), cfg))

	report := &catalogue.MigrationReport{}
	require.NoError(t, storage.NewDiskStorage("designers", dataRoot).LoadMigrationReport(report))
	assert.Equal(t, 1, report.Uploaded)
	require.Len(t, report.Results, 1)
	assert.Equal(t, types.EntryId(7), report.Results[0].Id)
}
