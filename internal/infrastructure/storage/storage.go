package storage

import (
	"errors"
	"fmt"

	"github.com/sanosuguru/go-event-board/internal/config"
	"github.com/sanosuguru/go-event-board/internal/domain/attachment"
	"github.com/sanosuguru/go-event-board/internal/pkg/metrics"
)

const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

var (
	// ErrBucketRequired は s3 ドライバーでバケット名が未設定のときに返る
	ErrBucketRequired = errors.New("S3_BUCKET が設定されていません")
	// ErrPublicBaseURLRequired は s3 ドライバーで公開URLが未設定のときに返る
	// s3 の添付ファイルはこのサーバーからは配信しない
	ErrPublicBaseURLRequired = errors.New("S3_PUBLIC_BASE_URL が設定されていません")
)

// New は設定に応じた添付ファイルストアを作成する
func New(cfg *config.StorageConfig, m *metrics.Metrics) (attachment.Store, error) {
	switch cfg.Driver {
	case DriverLocal, "":
		return Instrument(NewLocalStore(cfg.Dir, cfg.URLPrefix), DriverLocal, m), nil
	case DriverS3:
		if cfg.S3Bucket == "" {
			return nil, ErrBucketRequired
		}
		if cfg.S3PublicBaseURL == "" {
			return nil, ErrPublicBaseURLRequired
		}
		store := NewS3Store(NewS3Client(cfg), cfg.S3Bucket, cfg.URLPrefix, cfg.S3PublicBaseURL)
		return Instrument(store, DriverS3, m), nil
	default:
		return nil, fmt.Errorf("未対応のストレージドライバーです: %s", cfg.Driver)
	}
}
