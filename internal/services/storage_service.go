// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sme-sp/bens-fisicos-backend/internal/config"
)

// ErrDocumentoAusente is returned by Get when the key has no stored file.
var ErrDocumentoAusente = errors.New("document not stored")

// DocumentStorage keeps generated CIMBPM files.
type DocumentStorage interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// NewDocumentStorage uses S3 when a bucket is configured, the local
// filesystem otherwise.
func NewDocumentStorage(cfg config.StorageConfig) (DocumentStorage, error) {
	if cfg.S3Bucket == "" {
		logrus.WithField("path", cfg.LocalPath).Info("Storing CIMBPM documents on local filesystem")
		return NewLocalDocumentStorage(cfg.LocalPath), nil
	}

	awsConfig := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.AccessKeyID != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3DocumentStorage{
		client: s3.New(sess),
		bucket: cfg.S3Bucket,
		prefix: cfg.S3Prefix,
	}, nil
}

// ChaveDocumento builds a unique storage key for a CIMBPM file.
func ChaveDocumento(numero string, now time.Time) string {
	id := uuid.New()
	nome := NomeArquivoCIMBPM(numero)
	return fmt.Sprintf("%s/%s_%s", now.Format("2006/01"), id.String()[:8], nome)
}

type S3DocumentStorage struct {
	client *s3.S3
	bucket string
	prefix string
}

func (s *S3DocumentStorage) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

func (s *S3DocumentStorage) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(key)),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String("application/pdf"),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

func isS3NotFound(err error) bool {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound":
			return true
		}
	}
	return false
}

func (s *S3DocumentStorage) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(key)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, ErrDocumentoAusente
		}
		return nil, fmt.Errorf("failed to download from S3: %w", err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

func (s *S3DocumentStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(key)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat S3 object: %w", err)
	}
	return true, nil
}

type LocalDocumentStorage struct {
	root string
}

func NewLocalDocumentStorage(root string) *LocalDocumentStorage {
	return &LocalDocumentStorage{root: root}
}

func (s *LocalDocumentStorage) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func (s *LocalDocumentStorage) Put(ctx context.Context, key string, data []byte) error {
	p := s.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create document dir: %w", err)
	}
	return os.WriteFile(p, data, 0o644)
}

func (s *LocalDocumentStorage) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrDocumentoAusente
	}
	return data, err
}

func (s *LocalDocumentStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}
