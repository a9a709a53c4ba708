package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	domain "github.com/bryanwahyu/agentic-rag/internal/domain/documents"
)

// MinioStore keeps each document at object key <id>/original.
type MinioStore struct {
	client     *minio.Client
	bucketName string
	region     string
	now        func() time.Time
}

// NewMinioStore buat koneksi MinIO
func NewMinioStore(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*MinioStore, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	// pastikan bucket ada
	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &MinioStore{client: cli, bucketName: bucket, region: region, now: time.Now}, nil
}

func (s *MinioStore) Store(ctx context.Context, content []byte) (domain.DocID, error) {
	id := domain.NewDocID(content, s.now())
	key := string(id) + "/" + contentFile

	_, err := s.client.PutObject(ctx, s.bucketName, key,
		bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"},
	)
	if err != nil {
		return "", fmt.Errorf("%w: uploading content: %v", domain.ErrStorage, err)
	}
	return id, nil
}

func (s *MinioStore) Retrieve(ctx context.Context, id domain.DocID) ([]byte, error) {
	key := string(id) + "/" + contentFile

	obj, err := s.client.GetObject(ctx, s.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: fetching object: %v", domain.ErrStorage, err)
	}
	defer obj.Close()

	b, err := io.ReadAll(obj)
	if err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: reading object: %v", domain.ErrStorage, err)
	}
	return b, nil
}
