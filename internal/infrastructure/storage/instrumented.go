package storage

import (
	"context"
	"io"
	"time"

	"github.com/sanosuguru/go-event-board/internal/domain/attachment"
	"github.com/sanosuguru/go-event-board/internal/pkg/metrics"
)

// InstrumentedStore は保存時間をメトリクスに記録する attachment.Store のラッパー
type InstrumentedStore struct {
	next    attachment.Store
	driver  string
	metrics *metrics.Metrics
}

// Instrument は store を計測付きでラップする。m が nil ならそのまま返す
func Instrument(store attachment.Store, driver string, m *metrics.Metrics) attachment.Store {
	if m == nil {
		return store
	}
	return &InstrumentedStore{next: store, driver: driver, metrics: m}
}

// Store は保存処理を計測する
func (s *InstrumentedStore) Store(ctx context.Context, originalName string, content io.Reader) (string, error) {
	start := time.Now()
	p, err := s.next.Store(ctx, originalName, content)

	status := "success"
	if err != nil {
		status = "failed"
	}
	s.metrics.AttachmentStoreDuration.WithLabelValues(s.driver, status).Observe(time.Since(start).Seconds())
	return p, err
}
