// Package archive keeps a copy of every produced export artifact in object
// storage. Uploads are best effort: a failure is logged and never blocks the
// download that triggered it.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"catalog/api/internal/export"
	"catalog/api/internal/util"
)

type Service struct {
	client *minio.Client
	bucket string
}

// New connects to the object store and makes sure the bucket exists.
func New(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*Service, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect object store: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}

	return &Service{client: client, bucket: bucket}, nil
}

// Store uploads an artifact in the background. The object key prefixes the
// filename with the upload date and a fresh id so repeated exports never
// overwrite each other.
func (s *Service) Store(result *export.Result) {
	if s == nil || result == nil {
		return
	}
	data := make([]byte, len(result.Data))
	copy(data, result.Data)
	key := fmt.Sprintf("%s/%s/%s", time.Now().UTC().Format("2006/01/02"), util.NewID("exp"), result.Filename)
	mime := result.MimeType

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
			minio.PutObjectOptions{ContentType: mime})
		if err != nil {
			log.Printf("archive: store %s: %v", key, err)
			return
		}
		log.Printf("archive: stored %s (%d bytes)", key, len(data))
	}()
}
