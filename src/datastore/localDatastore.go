// Implementation of the datastore for files on the machine running chameleon.
package datastore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gocloud.dev/blob/fileblob"
)

type LocalDataStore struct{}

func NewLocalDataStore() *LocalDataStore {
	return &LocalDataStore{}
}

func (ds *LocalDataStore) Open(_ context.Context, filePath string) (io.ReadCloser, error) {
	return os.Open(filePath)
}

// Create writes through a fileblob bucket rooted at the parent directory,
// created if missing. The data goes to a temporary file that Close renames
// over filePath; if ctx is done by then the temporary file is dropped and
// filePath is left as it was.
func (ds *LocalDataStore) Create(ctx context.Context, filePath string) (io.WriteCloser, error) {
	bucket, err := fileblob.OpenBucket(filepath.Dir(filePath), &fileblob.Options{
		CreateDir: true,
		Metadata:  fileblob.MetadataDontWrite,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", filePath, err)
	}
	w, err := bucket.NewWriter(ctx, filepath.Base(filePath), nil)
	if err != nil {
		bucket.Close()
		return nil, fmt.Errorf("create %s: %w", filePath, err)
	}
	return &bucketWriter{WriteCloser: w, bucket: bucket}, nil
}

func (ds *LocalDataStore) Exists(_ context.Context, filePath string) (bool, error) {
	_, err := os.Stat(filePath)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (ds *LocalDataStore) Size(_ context.Context, filePath string) (int64, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return 0, err
	}
	return fileInfo.Size(), nil
}
