package storage

import (
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/matst80/plat-finder/pkg/types"
)

var ErrNotFound = errors.New("not found")

var _ types.StorageProvider = (*DiskStorage)(nil)

type DiskStorage struct {
	Collection    string
	RootFolder    string
	PublicBaseUrl string
}

func NewDiskStorage(collection, rootFolder string) *DiskStorage {
	return &DiskStorage{
		Collection: collection,
		RootFolder: rootFolder,
	}
}

func (ds *DiskStorage) GetFileName(name string) (string, string) {
	fileName := path.Join(ds.RootFolder, ds.Collection, name)
	tmpFileName := fileName + ".tmp-" + fmt.Sprintf("%d", time.Now().UnixMilli())
	return fileName, tmpFileName
}

func (ds *DiskStorage) GetUploadFilename(name string) string {
	return path.Join(ds.RootFolder, ds.Collection, "uploads", name)
}
