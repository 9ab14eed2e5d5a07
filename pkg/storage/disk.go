// Package storage stores uploaded files, such as profile images, on a local
// directory or an S3-compatible bucket.
//
//	storage.Connect(ctx)
//	err := storage.Put(ctx, "profiles/3f2a.png", data, "image/png")
//	url := storage.URL("profiles/3f2a.png")
package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/tiffin/config"
	"github.com/shashiranjanraj/tiffin/pkg/logger"
)

type Disk interface {
	Put(ctx context.Context, path string, content []byte, contentType string) error
	Exists(ctx context.Context, path string) (bool, error)
	Delete(ctx context.Context, path string) error
	// URL is the public address of path.
	URL(path string) string
}

var (
	mu          sync.RWMutex
	disks       = map[string]Disk{}
	defaultName = "local"
)

// Connect registers the local disk, plus the s3 disk when S3_BUCKET is set,
// and selects STORAGE_DISK as the default.
func Connect(ctx context.Context) error {
	local, err := NewLocalDisk(config.StorageLocalRoot(), config.StorageURL())
	if err != nil {
		return err
	}
	Register("local", local)

	if config.StorageS3Bucket() != "" {
		s3d, err := NewS3Disk(ctx, S3Config{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			BaseURL:  config.StorageS3URL(),
		})
		if err != nil {
			return err
		}
		Register("s3", s3d)
	}

	name := config.StorageDefault()
	if _, err := Use(name); err != nil {
		return err
	}
	mu.Lock()
	defaultName = name
	mu.Unlock()
	logger.Info("storage: ready", "default", name)
	return nil
}

func Register(name string, d Disk) {
	mu.Lock()
	defer mu.Unlock()
	disks[name] = d
}

// SetDefault selects the disk used by the package-level helpers.
func SetDefault(name string) {
	mu.Lock()
	defer mu.Unlock()
	defaultName = name
}

func Use(name string) (Disk, error) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := disks[name]
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return d, nil
}

// Default returns the default disk.
func Default() (Disk, error) {
	mu.RLock()
	name := defaultName
	mu.RUnlock()
	return Use(name)
}

func Put(ctx context.Context, path string, content []byte, contentType string) error {
	d, err := Default()
	if err != nil {
		return err
	}
	return d.Put(ctx, path, content, contentType)
}

func Delete(ctx context.Context, path string) error {
	d, err := Default()
	if err != nil {
		return err
	}
	return d.Delete(ctx, path)
}

func URL(path string) string {
	d, err := Default()
	if err != nil {
		return ""
	}
	return d.URL(path)
}
