// Implementation of the datastore for objects in an s3 bucket.
package datastore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	log "github.com/sirupsen/logrus"
	"gocloud.dev/blob"
	"gocloud.dev/blob/s3blob"
)

type S3DataStore struct {
	once    sync.Once
	client  *s3.Client
	initErr error
}

func NewS3DataStore() *S3DataStore {
	return &S3DataStore{}
}

// s3Client loads the default aws config (env, shared config, instance role) once.
func (ds *S3DataStore) s3Client(ctx context.Context) (*s3.Client, error) {
	ds.once.Do(func() {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			ds.initErr = fmt.Errorf("load s3 config: %w", err)
			return
		}
		ds.client = s3.NewFromConfig(cfg)
	})
	return ds.client, ds.initErr
}

func (ds *S3DataStore) openBucket(ctx context.Context, object string) (*blob.Bucket, string, error) {
	client, err := ds.s3Client(ctx)
	if err != nil {
		return nil, "", err
	}
	bucketName, key, err := splitS3Object(object)
	if err != nil {
		return nil, "", err
	}
	bucket, err := s3blob.OpenBucketV2(ctx, client, bucketName, nil)
	if err != nil {
		return nil, "", fmt.Errorf("open bucket %q: %w", bucketName, err)
	}
	return bucket, key, nil
}

func (ds *S3DataStore) Open(ctx context.Context, object string) (io.ReadCloser, error) {
	bucket, key, err := ds.openBucket(ctx, object)
	if err != nil {
		return nil, err
	}
	r, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		bucket.Close()
		return nil, fmt.Errorf("open %s: %w", object, err)
	}
	log.Infof("opened s3 object %s", object)
	return &bucketReader{ReadCloser: r, bucket: bucket}, nil
}

func (ds *S3DataStore) Create(ctx context.Context, object string) (io.WriteCloser, error) {
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

func (ds *S3DataStore) Exists(ctx context.Context, object string) (bool, error) {
	bucket, key, err := ds.openBucket(ctx, object)
	if err != nil {
		return false, err
	}
	defer bucket.Close()
	return bucket.Exists(ctx, key)
}

func (ds *S3DataStore) Size(ctx context.Context, object string) (int64, error) {
	client, err := ds.s3Client(ctx)
	if err != nil {
		return 0, err
	}
	bucketName, key, err := splitS3Object(object)
	if err != nil {
		return 0, err
	}
	headObject, err := client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, err
	}
	return headObject.ContentLength, nil
}

// splitS3Object splits "s3://bucket/key" into bucket name and key.
func splitS3Object(object string) (string, string, error) {
	u, err := url.Parse(object)
	if err != nil {
		return "", "", fmt.Errorf("parse object url %q: %w", object, err)
	}
	_, key, err := splitObjectURL(object)
	if err != nil {
		return "", "", err
	}
	return u.Host, key, nil
}
