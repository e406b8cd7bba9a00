package datastore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// Datastore opens and creates the input and output files of a run, wherever
// they live. A writer from Create publishes the file on Close; cancelling the
// context passed to Create before Close discards what was written.
type Datastore interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Create(ctx context.Context, path string) (io.WriteCloser, error)
	Exists(ctx context.Context, path string) (bool, error)
	Size(ctx context.Context, path string) (int64, error)
}

func NewDataStore(path string) Datastore {
	switch {
	case strings.HasPrefix(path, "s3://"):
		return NewS3DataStore()
	case strings.HasPrefix(path, "gs://"), strings.HasPrefix(path, "azblob://"):
		return NewBlobDataStore()
	default:
		return NewLocalDataStore()
	}
}

func IsRemote(path string) bool {
	_, isLocal := NewDataStore(path).(*LocalDataStore)
	return !isLocal
}

// splitObjectURL splits "scheme://bucket/key?params" into the bucket URL
// (with its query) and the object key.
func splitObjectURL(objectURL string) (bucketURL string, key string, err error) {
	u, err := url.Parse(objectURL)
	if err != nil {
		return "", "", fmt.Errorf("parse object url %q: %w", objectURL, err)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("missing bucket in url %v", objectURL)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("missing key in url %v", objectURL)
	}
	bucketURL = u.Scheme + "://" + u.Host
	if u.RawQuery != "" {
		bucketURL += "?" + u.RawQuery
	}
	return bucketURL, key, nil
}
