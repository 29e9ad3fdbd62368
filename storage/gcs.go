package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// gcsStore backs the gateway's remote side with a Google Cloud Storage bucket.
type gcsStore struct {
	bucket *gcs.BucketHandle
}

func newGCSStore(ctx context.Context, bucketName, projectID, credentialsPath string) (*gcsStore, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}

	bucket := client.Bucket(bucketName)
	if projectID != "" {
		// Verify the bucket is reachable up front so a misconfigured remote
		// degrades to local-only at startup, not per request.
		if _, err := bucket.Attrs(ctx); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("bucket %s: %w", bucketName, err)
		}
	}

	return &gcsStore{bucket: bucket}, nil
}

func (s *gcsStore) download(ctx context.Context, name string) ([]byte, error) {
	r, err := s.bucket.Object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, errRemoteNotFound
		}
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

func (s *gcsStore) upload(ctx context.Context, name string, data []byte) error {
	w := s.bucket.Object(name).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (s *gcsStore) delete(ctx context.Context, name string) error {
	err := s.bucket.Object(name).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return errRemoteNotFound
	}
	return err
}
