package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sanosuguru/go-event-board/internal/config"
	"github.com/sanosuguru/go-event-board/internal/domain/attachment"
)

// PutObjectAPI は S3Store が利用する S3 クライアントの操作
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client は設定から S3 クライアントを作成する
// エンドポイントを指定すると MinIO などの S3 互換ストレージにも接続できる
func NewS3Client(cfg *config.StorageConfig) *s3.Client {
	opts := s3.Options{
		Region:       cfg.S3Region,
		UsePathStyle: cfg.S3UsePathStyle,
	}
	if cfg.S3AccessKeyID != "" && cfg.S3SecretAccessKey != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, "")
	}
	if cfg.S3Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.S3Endpoint)
	}
	return s3.New(opts)
}

// S3Store は S3 バケットに添付ファイルを保存する
type S3Store struct {
	client        PutObjectAPI
	bucket        string
	keyPrefix     string
	publicBaseURL string
}

// NewS3Store は S3Store を作成する
func NewS3Store(client PutObjectAPI, bucket, keyPrefix, publicBaseURL string) *S3Store {
	return &S3Store{
		client:        client,
		bucket:        bucket,
		keyPrefix:     strings.Trim(keyPrefix, "/"),
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Store は content をオブジェクトとしてアップロードし、公開パスを返す
func (s *S3Store) Store(ctx context.Context, originalName string, content io.Reader) (string, error) {
	name, err := attachment.GenerateName(originalName)
	if err != nil {
		return "", err
	}
	key := path.Join(s.keyPrefix, name)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   content,
	}
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("S3へのアップロードに失敗: %w", err)
	}

	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key, nil
	}
	return "/" + key, nil
}

var _ attachment.Store = (*S3Store)(nil)
