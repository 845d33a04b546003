package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a key does not exist.
	ErrNotFound = errors.New("object not found")
	// ErrReadOnly is returned by backends that cannot store objects.
	ErrReadOnly = errors.New("storage backend is read-only")
)

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStorage captures the minimal object operations the service needs:
// reading demo fixtures and storing dashboard snapshots.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	GetObject(ctx context.Context, key string) ([]byte, error)
	PutObject(ctx context.Context, key string, data []byte) error
}

// Driver names accepted by New.
const (
	DriverLocal   = "local"
	DriverSevalla = "sevalla"
	DriverMinio   = "minio"
	DriverGDrive  = "gdrive"
)

// Config selects and configures a backend.
type Config struct {
	Driver    string
	LocalDir  string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool

	DriveCredentialsJSON string
	DriveFolderID        string
}

// New builds the backend named by cfg.Driver.
func New(ctx context.Context, cfg Config) (ObjectStorage, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverLocal:
		return NewLocalClient(cfg.LocalDir)
	case DriverSevalla, "s3":
		return NewSevallaClient(SevallaConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			UseSSL:    cfg.UseSSL,
		})
	case DriverMinio:
		return NewMinioClient(ctx, MinioConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			UseSSL:    cfg.UseSSL,
		})
	case DriverGDrive:
		return NewDriveClient(ctx, cfg.DriveCredentialsJSON, cfg.DriveFolderID)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
