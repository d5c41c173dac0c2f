package storage

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/matst80/plat-finder/pkg/common/jsoncompat"
	"github.com/matst80/plat-finder/pkg/types"
)

const migrationReportFile = "migration-report.json"

func (p *DiskStorage) ensureDir(fileName string) error {
	return os.MkdirAll(filepath.Dir(fileName), 0o755)
}

func (p *DiskStorage) SaveGzippedJson(data any, filename string) error {
	fileName, tmpFileName := p.GetFileName(filename)
	if err := p.ensureDir(fileName); err != nil {
		return err
	}
	bytes, err := jsoncompat.Marshal(data)
	if err != nil {
		return err
	}

	file, err := os.Create(tmpFileName)
	if err != nil {
		return err
	}
	zipWriter := gzip.NewWriter(file)
	if _, err = zipWriter.Write(bytes); err != nil {
		_ = zipWriter.Close()
		_ = file.Close()
		_ = os.Remove(tmpFileName)
		return err
	}
	if err = zipWriter.Close(); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpFileName)
		return err
	}
	if err = file.Close(); err != nil {
		_ = os.Remove(tmpFileName)
		return err
	}
	return os.Rename(tmpFileName, fileName)
}

func (p *DiskStorage) LoadGzippedJson(data any, filename string) error {
	name, _ := p.GetFileName(filename)
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()

	zipReader, err := gzip.NewReader(file)
	if err != nil {
		return err
	}
	defer zipReader.Close()

	err = jsoncompat.Decode(zipReader, data)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (p *DiskStorage) SaveJson(data any, name string) error {
	fileName, tmpFileName := p.GetFileName(name)
	if err := p.ensureDir(fileName); err != nil {
		return err
	}
	bytes, err := jsoncompat.Marshal(data)
	if err != nil {
		return err
	}
	if err = os.WriteFile(tmpFileName, bytes, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpFileName, fileName)
}

func (p *DiskStorage) LoadJson(data any, filename string) error {
	name, _ := p.GetFileName(filename)
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()

	err = jsoncompat.Decode(file, data)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (p *DiskStorage) SaveMigrationReport(report any) error {
	return p.SaveJson(report, migrationReportFile)
}

func (p *DiskStorage) LoadMigrationReport(report any) error {
	err := p.LoadJson(report, migrationReportFile)
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

// Upload copies a local file into the upload folder. It serves local setups
// without object storage, the returned url is relative to PublicBaseUrl.
func (p *DiskStorage) Upload(ctx context.Context, id types.EntryId, file types.FileHandle) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	src, err := os.Open(string(file))
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := fmt.Sprintf("%d-%s%s", id, uuid.New(), strings.ToLower(path.Ext(string(file))))
	target := p.GetUploadFilename(name)
	if err = p.ensureDir(target); err != nil {
		return "", err
	}
	dst, err := os.Create(target)
	if err != nil {
		return "", err
	}
	if _, err = io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(target)
		return "", err
	}
	if err = dst.Close(); err != nil {
		return "", err
	}
	log.Printf("Stored upload for %d in %s", id, target)
	return strings.TrimRight(p.PublicBaseUrl, "/") + "/" + path.Join(p.Collection, "uploads", name), nil
}
