package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-board/internal/domain/attachment"
	"github.com/sanosuguru/go-event-board/internal/domain/event"
	redisinfra "github.com/sanosuguru/go-event-board/internal/infrastructure/redis"
	"github.com/sanosuguru/go-event-board/internal/pkg/logger"
	"github.com/sanosuguru/go-event-board/internal/pkg/metrics"
)

// ListCache は一覧結果のキャッシュ
// Invalidate のたびに世代が進み、古い世代で Set した一覧は読まれない
type ListCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, gen int64, filter event.Filter, day time.Time) ([]*event.Event, error)
	Set(ctx context.Context, gen int64, filter event.Filter, day time.Time, events []*event.Event) error
	Invalidate(ctx context.Context) error
}

// EventService はイベントの一覧・作成・取得・ステータス更新を扱う
// cache と metrics は nil でもよい
type EventService struct {
	eventRepo event.Repository
	store     attachment.Store
	cache     ListCache
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewEventService(eventRepo event.Repository, store attachment.Store, cache ListCache, m *metrics.Metrics) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		store:     store,
		cache:     cache,
		metrics:   m,
		now:       time.Now,
	}
}

// Attachment はアップロードされたQRコード画像
type Attachment struct {
	Name    string
	Content io.Reader
}

type CreateEventInput struct {
	Title    string
	Place    string
	Gradient string
	Icon     string
	Date     string
	Time     string
	QRCode   *Attachment
}

func (in CreateEventInput) hasRequiredFields() bool {
	for _, v := range []string{in.Title, in.Place, in.Gradient, in.Icon, in.Date, in.Time} {
		if v == "" {
			return false
		}
	}
	return true
}

func (s *EventService) ListEvents(ctx context.Context, rawFilter string) ([]*event.Event, error) {
	filter, err := event.ParseFilter(rawFilter)
	if err != nil {
		return nil, err
	}
	day := event.Today(s.now())

	// 世代はDBを読む前に取得する。読んでいる間に無効化されれば、この結果は古い世代に保存される
	useCache := s.cache != nil
	var gen int64
	if useCache {
		gen, err = s.cache.Generation(ctx)
		if err != nil {
			useCache = false
			s.countCache("error")
			logger.Warn("キャッシュ世代の取得エラー", zap.Error(err))
		}
	}

	// キャッシュから取得を試みる
	if useCache {
		events, err := s.cache.Get(ctx, gen, filter, day)
		if err == nil {
			s.countCache("hit")
			logger.Debug("キャッシュヒット", zap.String("filter", string(filter)), zap.Int("count", len(events)))
			return events, nil
		}
		if errors.Is(err, redisinfra.ErrCacheMiss) {
			s.countCache("miss")
		} else {
			s.countCache("error")
			logger.Warn("キャッシュ取得エラー", zap.Error(err))
		}
	}

	events, err := s.eventRepo.ListByFilter(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("イベント一覧取得に失敗しました: %w", err)
	}

	if useCache {
		if cacheErr := s.cache.Set(ctx, gen, filter, day, events); cacheErr != nil {
			logger.Warn("キャッシュ保存エラー", zap.Error(cacheErr))
		}
	}
	return events, nil
}

// CreateEvent はイベントを作成し、採番されたIDを返す
// 添付ファイルは行の挿入より先に保存し、保存に失敗した場合は挿入しない
func (s *EventService) CreateEvent(ctx context.Context, input CreateEventInput) (int64, error) {
	if !input.hasRequiredFields() {
		return 0, event.ErrMissingFields
	}
	date, err := event.ParseDate(input.Date)
	if err != nil {
		return 0, err
	}
	clock, err := event.ParseClock(input.Time)
	if err != nil {
		return 0, err
	}

	var qrCodePath *string
	if input.QRCode != nil {
		if s.store == nil {
			return 0, fmt.Errorf("%w: 保存先が設定されていません", event.ErrAttachment)
		}
		p, err := s.store.Store(ctx, input.QRCode.Name, input.QRCode.Content)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", event.ErrAttachment, err)
		}
		qrCodePath = &p
	}

	e := event.NewEvent(input.Title, input.Place, input.Gradient, input.Icon, date, clock, qrCodePath)
	if err := e.Validate(); err != nil {
		return 0, err
	}

	id, err := s.eventRepo.Insert(ctx, e)
	if err != nil {
		if qrCodePath != nil {
			// 保存済みの添付ファイルは補償しない
			logger.Warn("行に紐付かない添付ファイルが残りました", zap.String("qr_code_path", *qrCodePath))
		}
		if !errors.Is(err, event.ErrPersistence) {
			err = fmt.Errorf("%w: %w", event.ErrPersistence, err)
		}
		return 0, err
	}

	s.invalidateListCache(ctx)
	if s.metrics != nil {
		label := "without"
		if qrCodePath != nil {
			label = "with"
		}
		s.metrics.EventsCreatedTotal.WithLabelValues(label).Inc()
	}
	logger.Info("イベントを作成しました", zap.Int64("event_id", id), zap.Bool("qr_code", qrCodePath != nil))
	return id, nil
}

func (s *EventService) GetEvent(ctx context.Context, rawID string) (*event.Event, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.GetByID(ctx, id)
}

// UpdateEventStatus はステータスを accepted / declined に変更する
// 同じステータスの再適用も成功として扱う。該当行がなくても成功を返す
func (s *EventService) UpdateEventStatus(ctx context.Context, rawID, rawStatus string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	status := event.Status(rawStatus)
	if err := event.ValidateStatusChange(status); err != nil {
		return err
	}

	affected, err := s.eventRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		return fmt.Errorf("ステータス更新に失敗しました: %w", err)
	}

	result := "updated"
	if affected == 0 {
		result = "no_rows"
		logger.Warn("ステータス更新の対象行がありません", zap.Int64("event_id", id), zap.String("status", string(status)))
	}
	if s.metrics != nil {
		s.metrics.StatusUpdatesTotal.WithLabelValues(string(status), result).Inc()
	}

	s.invalidateListCache(ctx)
	return nil
}

// RefreshListCache は全フィルターの一覧を読み直してキャッシュに保存する
// 日付が変わった直後でも分類が正しくなるよう、ワーカーから定期的に呼ばれる
func (s *EventService) RefreshListCache(ctx context.Context) (int, error) {
	if s.cache == nil {
		return 0, nil
	}
	day := event.Today(s.now())
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		return 0, err
	}

	refreshed := 0
	for _, f := range event.Filters {
		events, err := s.eventRepo.ListByFilter(ctx, f)
		if err != nil {
			return refreshed, fmt.Errorf("イベント一覧取得に失敗しました: %w", err)
		}
		if err := s.cache.Set(ctx, gen, f, day, events); err != nil {
			return refreshed, err
		}
		refreshed++
	}
	return refreshed, nil
}

func (s *EventService) invalidateListCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Warn("キャッシュ無効化エラー", zap.Error(err))
	}
}

func (s *EventService) countCache(result string) {
	if s.metrics != nil {
		s.metrics.ListCacheTotal.WithLabelValues(result).Inc()
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", event.ErrInvalidID, raw)
	}
	return id, nil
}
