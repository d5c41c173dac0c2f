package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/matst80/plat-finder/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestDiskStorageJson(t *testing.T) {
	disk := NewDiskStorage("designers", t.TempDir())

	require.NoError(t, disk.SaveJson(testDoc{Name: "a", Count: 2}, "doc.json"))
	var back testDoc
	require.NoError(t, disk.LoadJson(&back, "doc.json"))
	assert.Equal(t, testDoc{Name: "a", Count: 2}, back)

	require.NoError(t, disk.SaveGzippedJson([]testDoc{{Name: "b"}}, "docs.json.gz"))
	var list []testDoc
	require.NoError(t, disk.LoadGzippedJson(&list, "docs.json.gz"))
	assert.Equal(t, []testDoc{{Name: "b"}}, list)

	err := disk.LoadJson(&back, "missing.json")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestMigrationReport(t *testing.T) {
	disk := NewDiskStorage("designers", t.TempDir())
	var report map[string]int
	assert.ErrorIs(t, disk.LoadMigrationReport(&report), ErrNotFound)

	require.NoError(t, disk.SaveMigrationReport(map[string]int{"uploaded": 3}))
	require.NoError(t, disk.LoadMigrationReport(&report))
	assert.Equal(t, 3, report["uploaded"])
}

func TestDiskUpload(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(t.TempDir(), "P66.JPG")
	require.NoError(t, os.WriteFile(src, []byte("image"), 0o644))

	disk := NewDiskStorage("designers", root)
	disk.PublicBaseUrl = "https://files.test/"
	url, err := disk.Upload(t.Context(), 66, types.FileHandle(src))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://files.test/designers/uploads/66-"), url)
	assert.True(t, strings.HasSuffix(url, ".jpg"), url)

	stored := disk.GetUploadFilename(strings.TrimPrefix(url, "https://files.test/designers/uploads/"))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, "image", string(data))

	_, err = disk.Upload(t.Context(), 1, "/does/not/exist.jpg")
	assert.Error(t, err)
}

func testOverrideStore(t *testing.T, store types.OverrideStore) {
	t.Helper()
	ctx := t.Context()

	_, ok, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, 1, "https://cdn.test/1.jpg"))
	require.NoError(t, store.Put(ctx, 2, "https://cdn.test/2.jpg"))
	require.NoError(t, store.Put(ctx, 1, "https://cdn.test/1b.jpg"))

	url, ok, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://cdn.test/1b.jpg", url)

	all, err := store.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[types.EntryId]string{1: "https://cdn.test/1b.jpg", 2: "https://cdn.test/2.jpg"}, all)
}

func TestMemoryOverrideStore(t *testing.T) {
	store := NewMemoryOverrideStore()
	testOverrideStore(t, store)

	require.NoError(t, store.Clear(t.Context()))
	all, err := store.All(t.Context())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestFileOverrideStore(t *testing.T) {
	disk := NewDiskStorage("designers", t.TempDir())
	testOverrideStore(t, NewFileOverrideStore(disk))

	reopened := NewFileOverrideStore(disk)
	all, err := reopened.All(t.Context())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, reopened.Clear(t.Context()))
	all, err = NewFileOverrideStore(disk).All(t.Context())
	require.NoError(t, err)
	assert.Empty(t, all)
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	data, _ := io.ReadAll(params.Body)
	f.body = string(data)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3Upload(t *testing.T) {
	src := filepath.Join(t.TempDir(), "S2.png")
	require.NoError(t, os.WriteFile(src, []byte("png"), 0o644))

	putter := &fakePutter{}
	u := &S3Uploader{
		cfg:    S3Config{Bucket: "designers", Prefix: "pieces", Endpoint: "https://s3.test"},
		client: putter,
	}
	url, err := u.Upload(t.Context(), 2, types.FileHandle(src))
	require.NoError(t, err)

	require.NotNil(t, putter.input)
	assert.Equal(t, "designers", *putter.input.Bucket)
	assert.True(t, strings.HasPrefix(*putter.input.Key, "pieces/2/"))
	assert.Equal(t, "image/png", *putter.input.ContentType)
	assert.Equal(t, "png", putter.body)
	assert.Equal(t, "https://s3.test/designers/"+*putter.input.Key, url)

	u.cfg.PublicBaseUrl = "https://cdn.test/"
	url, err = u.Upload(t.Context(), 2, types.FileHandle(src))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/"+*putter.input.Key, url)

	putter.err = errors.New("denied")
	_, err = u.Upload(t.Context(), 2, types.FileHandle(src))
	assert.ErrorContains(t, err, "denied")
}
