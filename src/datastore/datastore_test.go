package datastore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDataStore(t *testing.T) {
	assert.IsType(t, &LocalDataStore{}, NewDataStore("/tmp/in.csv"))
	assert.IsType(t, &LocalDataStore{}, NewDataStore("relative/in.csv"))
	assert.IsType(t, &S3DataStore{}, NewDataStore("s3://bucket/in.csv"))
	assert.IsType(t, &BlobDataStore{}, NewDataStore("gs://bucket/in.csv"))
	assert.IsType(t, &BlobDataStore{}, NewDataStore("azblob://container/in.xlsx"))

	assert.False(t, IsRemote("in.csv"))
	assert.True(t, IsRemote("s3://bucket/in.csv"))
}

func TestSplitObjectURL(t *testing.T) {
	bucketURL, key, err := splitObjectURL("gs://bucket/dir/in.csv?project=p1")
	require.NoError(t, err)
	assert.Equal(t, "gs://bucket?project=p1", bucketURL)
	assert.Equal(t, "dir/in.csv", key)

	bucket, key, err := splitS3Object("s3://my-bucket/a/b.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "my-bucket", bucket)
	assert.Equal(t, "a/b.xlsx", key)

	_, _, err = splitObjectURL("s3:///no-bucket.csv")
	assert.Error(t, err)
	_, _, err = splitObjectURL("s3://bucket")
	assert.Error(t, err)
}

func TestLocalDataStore(t *testing.T) {
	ctx := context.Background()
	ds := NewLocalDataStore()
	path := filepath.Join(t.TempDir(), "nested", "out.csv")

	exists, err := ds.Exists(ctx, path)
	require.NoError(t, err)
	assert.False(t, exists)

	w, err := ds.Create(ctx, path)
	require.NoError(t, err)
	_, err = io.WriteString(w, "a,b\n1,2\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	exists, err = ds.Exists(ctx, path)
	require.NoError(t, err)
	assert.True(t, exists)
	size, err := ds.Size(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, int64(8), size)

	r, err := ds.Open(ctx, path)
	require.NoError(t, err)
	defer r.Close()
	bs, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(bs))
}

func TestLocalDataStoreCancelledWriteKeepsOldFile(t *testing.T) {
	ds := NewLocalDataStore()
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	w, err := ds.Create(ctx, path)
	require.NoError(t, err)
	_, err = io.WriteString(w, "partial")
	require.NoError(t, err)
	cancel()
	assert.ErrorIs(t, w.Close(), context.Canceled)

	bs, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(bs))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
