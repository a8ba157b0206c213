package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-event-board/internal/domain/event"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// generationKey は一覧キャッシュの世代番号。TTLは付けない
const generationKey = "events:list:generation"

// cachedEvent はキャッシュに保存するイベントの表現
type cachedEvent struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Place      string    `json:"place"`
	Gradient   string    `json:"gradient"`
	Icon       string    `json:"icon"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	Status     string    `json:"status"`
	QRCodePath *string   `json:"qr_code_path"`
	PhotoPath  *string   `json:"photo_path"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// EventListCache は upcoming / previous の一覧結果をキャッシュする
// 分類は日付に依存するため、キーには世代と基準日を含める
type EventListCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewEventListCache は新しいEventListCacheインスタンスを作成する
func NewEventListCache(client *redis.Client, ttl time.Duration) *EventListCache {
	return &EventListCache{client: client, ttl: ttl}
}

// Generation は現在の世代番号を返す。未設定なら 0
func (c *EventListCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("キャッシュ世代の取得に失敗: %w", err)
	}
	return gen, nil
}

// Get は世代 gen・基準日 day の一覧をキャッシュから取得する
func (c *EventListCache) Get(ctx context.Context, gen int64, filter event.Filter, day time.Time) ([]*event.Event, error) {
	raw, err := c.client.Get(ctx, c.listKey(gen, filter, day)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}

	var cached []cachedEvent
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, fmt.Errorf("キャッシュの復元に失敗: %w", err)
	}

	events := make([]*event.Event, 0, len(cached))
	for _, ce := range cached {
		d, err := time.Parse(event.DateLayout, ce.Date)
		if err != nil {
			return nil, fmt.Errorf("キャッシュの復元に失敗: %w", err)
		}
		events = append(events, &event.Event{
			ID:         ce.ID,
			Title:      ce.Title,
			Place:      ce.Place,
			Gradient:   ce.Gradient,
			Icon:       ce.Icon,
			Date:       d,
			Time:       ce.Time,
			Status:     event.Status(ce.Status),
			QRCodePath: ce.QRCodePath,
			PhotoPath:  ce.PhotoPath,
			CreatedAt:  ce.CreatedAt,
			UpdatedAt:  ce.UpdatedAt,
		})
	}
	return events, nil
}

// Set は世代 gen・基準日 day の一覧をキャッシュに保存する
func (c *EventListCache) Set(ctx context.Context, gen int64, filter event.Filter, day time.Time, events []*event.Event) error {
	cached := make([]cachedEvent, len(events))
	for i, e := range events {
		cached[i] = cachedEvent{
			ID:         e.ID,
			Title:      e.Title,
			Place:      e.Place,
			Gradient:   e.Gradient,
			Icon:       e.Icon,
			Date:       e.DateString(),
			Time:       e.Time,
			Status:     string(e.Status),
			QRCodePath: e.QRCodePath,
			PhotoPath:  e.PhotoPath,
			CreatedAt:  e.CreatedAt,
			UpdatedAt:  e.UpdatedAt,
		}
	}

	raw, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("キャッシュのシリアライズに失敗: %w", err)
	}
	if err := c.client.Set(ctx, c.listKey(gen, filter, day), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate は世代を進め、それ以前に保存された一覧を読まれないようにする
// 古い世代のキーはTTLで消える
func (c *EventListCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *EventListCache) listKey(gen int64, filter event.Filter, day time.Time) string {
	return fmt.Sprintf("events:list:%d:%s:%s", gen, filter, day.Format(event.DateLayout))
}
