package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-board/internal/pkg/logger"
)

// DefaultRefreshInterval は間隔が 0 以下のときに使う
const DefaultRefreshInterval = time.Minute

// ListCacheWarmer は一覧キャッシュを読み直すインターフェース
type ListCacheWarmer interface {
	RefreshListCache(ctx context.Context) (int, error)
}

// ListCacheRefresher は一覧キャッシュを定期的に作り直すワーカー
// 日付が変わると upcoming / previous の境界が動くため、TTL切れを待たずに反映する
type ListCacheRefresher struct {
	eventService ListCacheWarmer
	interval     time.Duration
	stopCh       chan struct{}
	doneCh       chan struct{}
	stopOnce     sync.Once
}

// NewListCacheRefresher は新しいリフレッシャーを作成
func NewListCacheRefresher(es ListCacheWarmer, interval time.Duration) *ListCacheRefresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &ListCacheRefresher{
		eventService: es,
		interval:     interval,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// Start はリフレッシャーを開始し、停止するまでブロックする
func (r *ListCacheRefresher) Start(ctx context.Context) {
	logger.Info("一覧キャッシュリフレッシャー開始", zap.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	// 起動直後に一度温めておく
	r.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("一覧キャッシュリフレッシャー停止（コンテキストキャンセル）")
			return
		case <-r.stopCh:
			logger.Info("一覧キャッシュリフレッシャー停止（シグナル受信）")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// Stop はリフレッシャーを停止し、終了を待つ
func (r *ListCacheRefresher) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	<-r.doneCh
}

func (r *ListCacheRefresher) refresh(ctx context.Context) {
	log := logger.Get()

	count, err := r.eventService.RefreshListCache(ctx)
	if err != nil {
		log.Error("一覧キャッシュの更新失敗", zap.Error(err))
		return
	}
	log.Debug("一覧キャッシュを更新", zap.Int("filters", count))
}
