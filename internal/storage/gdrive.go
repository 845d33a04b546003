package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// DriveClient exposes one Google Drive folder as read-only object storage.
// Object keys are file names inside the folder.
type DriveClient struct {
	srv      *drive.Service
	folderID string
}

// NewDriveClient authenticates with a service account JSON.
func NewDriveClient(ctx context.Context, credentialsJSON, folderID string) (*DriveClient, error) {
	if strings.TrimSpace(credentialsJSON) == "" {
		return nil, fmt.Errorf("google drive credentials must be provided")
	}

	config, err := google.JWTConfigFromJSON([]byte(credentialsJSON), drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse drive credentials: %w", err)
	}

	srv, err := drive.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create drive client: %w", err)
	}

	if folderID == "" {
		folderID = "root"
	}
	return &DriveClient{srv: srv, folderID: folderID}, nil
}

// ListObjects lists files of the folder whose name starts with prefix.
func (c *DriveClient) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	results := make([]ObjectInfo, 0)
	pageToken := ""
	for {
		call := c.srv.Files.List().
			Context(ctx).
			Q(fmt.Sprintf("'%s' in parents and trashed=false and mimeType!='application/vnd.google-apps.folder'", c.folderID)).
			Fields("nextPageToken, files(id, name, size)")
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		result, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("drive list failed: %w", err)
		}
		for _, f := range result.Files {
			if strings.HasPrefix(f.Name, prefix) {
				results = append(results, ObjectInfo{Key: f.Name, Size: f.Size})
			}
		}

		if result.NextPageToken == "" {
			return results, nil
		}
		pageToken = result.NextPageToken
	}
}

// GetObject downloads the file named key.
func (c *DriveClient) GetObject(ctx context.Context, key string) ([]byte, error) {
	id, err := c.findFile(ctx, key)
	if err != nil {
		return nil, err
	}

	resp, err := c.srv.Files.Get(id).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("unable to download %s: %w", key, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", key, err)
	}
	return buf.Bytes(), nil
}

// PutObject always fails; the drive scope is read-only.
func (c *DriveClient) PutObject(ctx context.Context, key string, data []byte) error {
	return fmt.Errorf("drive put %s: %w", key, ErrReadOnly)
}

func (c *DriveClient) findFile(ctx context.Context, name string) (string, error) {
	escaped := strings.ReplaceAll(name, "'", "\\'")
	result, err := c.srv.Files.List().
		Context(ctx).
		Q(fmt.Sprintf("'%s' in parents and name='%s' and trashed=false", c.folderID, escaped)).
		Fields("files(id, name)").
		Do()
	if err != nil {
		return "", fmt.Errorf("error finding file %s: %w", name, err)
	}
	if len(result.Files) == 0 {
		return "", fmt.Errorf("drive get %s: %w", name, ErrNotFound)
	}
	return result.Files[0].Id, nil
}

var _ ObjectStorage = (*DriveClient)(nil)
