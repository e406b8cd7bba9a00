// Implementation of the datastore for Google Cloud Storage (gs://) and Azure
// Blob Storage (azblob://) objects, through the gocloud URL openers.
package datastore

import (
	"context"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/gcsblob"
)

type BlobDataStore struct{}

func NewBlobDataStore() *BlobDataStore {
	return &BlobDataStore{}
}

func (ds *BlobDataStore) openBucket(ctx context.Context, object string) (*blob.Bucket, string, error) {
	bucketURL, key, err := splitObjectURL(object)
	if err != nil {
		return nil, "", err
	}
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, "", fmt.Errorf("open bucket %q: %w", bucketURL, err)
	}
	return bucket, key, nil
}

func (ds *BlobDataStore) Open(ctx context.Context, object string) (io.ReadCloser, error) {
	bucket, key, err := ds.openBucket(ctx, object)
	if err != nil {
		return nil, err
	}
	r, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		bucket.Close()
		return nil, fmt.Errorf("open %s: %w", object, err)
	}
	log.Infof("opened object %s", object)
	return &bucketReader{ReadCloser: r, bucket: bucket}, nil
}

func (ds *BlobDataStore) Create(ctx context.Context, object string) (io.WriteCloser, error) {
	bucket, key, err := ds.openBucket(ctx, object)
	if err != nil {
		return nil, err
	}
	w, err := bucket.NewWriter(ctx, key, nil)
	if err != nil {
		bucket.Close()
		return nil, fmt.Errorf("create %s: %w", object, err)
	}
	return &bucketWriter{WriteCloser: w, bucket: bucket}, nil
}

func (ds *BlobDataStore) Exists(ctx context.Context, object string) (bool, error) {
	bucket, key, err := ds.openBucket(ctx, object)
	if err != nil {
		return false, err
	}
	defer bucket.Close()
	return bucket.Exists(ctx, key)
}

func (ds *BlobDataStore) Size(ctx context.Context, object string) (int64, error) {
	bucket, key, err := ds.openBucket(ctx, object)
	if err != nil {
		return 0, err
	}
	defer bucket.Close()
	attrs, err := bucket.Attributes(ctx, key)
	if err != nil {
		return 0, err
	}
	return attrs.Size, nil
}

// bucketReader and bucketWriter close the bucket along with the object.
type bucketReader struct {
	io.ReadCloser
	bucket *blob.Bucket
}

func (r *bucketReader) Close() error {
	err := r.ReadCloser.Close()
	if bErr := r.bucket.Close(); err == nil {
		err = bErr
	}
	return err
}

type bucketWriter struct {
	io.WriteCloser
	bucket *blob.Bucket
}

// Close commits the object; a write error surfaces here.
func (w *bucketWriter) Close() error {
	err := w.WriteCloser.Close()
	if bErr := w.bucket.Close(); err == nil {
		err = bErr
	}
	return err
}
