package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/stocksense/backend-go/internal/ingest"
	"github.com/andresuchdata/stocksense/backend-go/internal/storage"
)

func storageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "storage-driver", Value: storage.DriverLocal, EnvVars: []string{"STORAGE_DRIVER"}},
		&cli.StringFlag{Name: "storage-local-dir", Value: "./data/storage", EnvVars: []string{"STORAGE_LOCAL_DIR"}},
		&cli.StringFlag{Name: "storage-endpoint", EnvVars: []string{"STORAGE_ENDPOINT"}},
		&cli.StringFlag{Name: "storage-access-key", EnvVars: []string{"STORAGE_ACCESS_KEY"}},
		&cli.StringFlag{Name: "storage-secret-key", EnvVars: []string{"STORAGE_SECRET_KEY"}},
		&cli.StringFlag{Name: "storage-bucket", EnvVars: []string{"STORAGE_BUCKET"}},
		&cli.StringFlag{Name: "storage-region", Value: "us-east-1", EnvVars: []string{"STORAGE_REGION"}},
		&cli.BoolFlag{Name: "storage-use-ssl", Value: true, EnvVars: []string{"STORAGE_USE_SSL"}},
		&cli.StringFlag{Name: "drive-credentials-json", EnvVars: []string{"GOOGLE_DRIVE_CREDENTIALS_JSON"}},
		&cli.StringFlag{Name: "drive-folder-id", EnvVars: []string{"GOOGLE_DRIVE_FOLDER_ID"}},
	}
}

func newStorage(c *cli.Context) (storage.ObjectStorage, error) {
	return storage.New(c.Context, storage.Config{
		Driver:               c.String("storage-driver"),
		LocalDir:             c.String("storage-local-dir"),
		Endpoint:             c.String("storage-endpoint"),
		AccessKey:            c.String("storage-access-key"),
		SecretKey:            c.String("storage-secret-key"),
		Bucket:               c.String("storage-bucket"),
		Region:               c.String("storage-region"),
		UseSSL:               c.Bool("storage-use-ssl"),
		DriveCredentialsJSON: c.String("drive-credentials-json"),
		DriveFolderID:        c.String("drive-folder-id"),
	})
}

// downloader copies tabular objects from storage into a local directory.
type downloader struct {
	client  storage.ObjectStorage
	destDir string
}

func newDownloader(client storage.ObjectStorage, destDir string) (*downloader, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure download dir %s: %w", destDir, err)
	}
	return &downloader{client: client, destDir: destDir}, nil
}

// download fetches every supported file under prefix and returns the local paths, sorted.
func (d *downloader) download(ctx context.Context, prefix string) ([]string, error) {
	listPrefix := strings.TrimSpace(prefix)
	objects, err := d.client.ListObjects(ctx, listPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects for prefix %s: %w", listPrefix, err)
	}

	localPaths := make([]string, 0, len(objects))
	for _, obj := range objects {
		if _, err := ingest.DetectFormat(obj.Key); err != nil {
			continue
		}

		data, err := d.client.GetObject(ctx, obj.Key)
		if err != nil {
			return nil, err
		}

		localPath := filepath.Join(d.destDir, objectRelativePath(listPrefix, obj.Key))
		if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to prepare directory for %s: %w", localPath, err)
		}
		if err := os.WriteFile(localPath, data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", localPath, err)
		}
		localPaths = append(localPaths, localPath)
	}

	if len(localPaths) == 0 {
		return nil, fmt.Errorf("no tabular files found for prefix %s", prefix)
	}

	sort.Strings(localPaths)
	return localPaths, nil
}

func objectRelativePath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	prefixTrimmed := strings.TrimSuffix(strings.TrimSpace(prefix), "/")
	rel := strings.TrimPrefix(key, prefixTrimmed+"/")
	if rel == "" || rel == key {
		return filepath.Base(key)
	}
	return rel
}
