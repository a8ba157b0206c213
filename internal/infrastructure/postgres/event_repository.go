package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-event-board/internal/domain/event"
)

const eventColumns = `id, title, place, gradient, icon, date, time, status, qr_code_path, photo_path, created_at, updated_at`

// eventRow はDBの行を表す構造体
type eventRow struct {
	ID         int64     `db:"id"`
	Title      string    `db:"title"`
	Place      string    `db:"place"`
	Gradient   string    `db:"gradient"`
	Icon       string    `db:"icon"`
	Date       time.Time `db:"date"`
	Time       time.Time `db:"time"`
	Status     string    `db:"status"`
	QRCodePath *string   `db:"qr_code_path"`
	PhotoPath  *string   `db:"photo_path"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// toEntity はeventRowをEventエンティティに変換する
func (r *eventRow) toEntity() *event.Event {
	return &event.Event{
		ID:         r.ID,
		Title:      r.Title,
		Place:      r.Place,
		Gradient:   r.Gradient,
		Icon:       r.Icon,
		Date:       time.Date(r.Date.Year(), r.Date.Month(), r.Date.Day(), 0, 0, 0, 0, time.UTC),
		Time:       r.Time.Format(event.TimeLayout),
		Status:     event.Status(r.Status),
		QRCodePath: r.QRCodePath,
		PhotoPath:  r.PhotoPath,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// EventRepository はイベントリポジトリのPostgreSQL実装
type EventRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewEventRepository はEventRepositoryを作成する
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db, now: time.Now}
}

// ListByFilter は今日を基準にイベントを絞り込んで取得する
func (r *EventRepository) ListByFilter(ctx context.Context, filter event.Filter) ([]*event.Event, error) {
	var query string
	switch filter {
	case event.FilterUpcoming:
		query = `SELECT ` + eventColumns + ` FROM events WHERE date >= $1 ORDER BY date ASC, id ASC`
	case event.FilterPrevious:
		query = `SELECT ` + eventColumns + ` FROM events WHERE date < $1 ORDER BY date DESC, id DESC`
	default:
		return nil, event.ErrInvalidFilter
	}

	today := event.Today(r.now()).Format(event.DateLayout)

	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, query, today); err != nil {
		return nil, fmt.Errorf("%w: イベント一覧取得に失敗しました: %w", event.ErrPersistence, err)
	}

	events := make([]*event.Event, len(rows))
	for i := range rows {
		events[i] = rows[i].toEntity()
	}
	return events, nil
}

// Insert は新しいイベントを作成し、採番されたIDを返す
// status は列のデフォルト（pending）に任せる
func (r *EventRepository) Insert(ctx context.Context, e *event.Event) (int64, error) {
	query := `
		INSERT INTO events (title, place, gradient, icon, date, time, qr_code_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		e.Title, e.Place, e.Gradient, e.Icon, e.DateString(), e.Time, e.QRCodePath, e.CreatedAt, e.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: イベント作成に失敗しました: %w", event.ErrPersistence, err)
	}
	return id, nil
}

// GetByID はIDからイベントを取得する
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	var row eventRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("%w: イベント取得に失敗しました: %w", event.ErrPersistence, err)
	}
	return row.toEntity(), nil
}

// UpdateStatus はステータスを更新し、影響行数を返す
// 0 行の場合の扱いは呼び出し側が決める
func (r *EventRepository) UpdateStatus(ctx context.Context, id int64, status event.Status) (int64, error) {
	query := `UPDATE events SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, string(status), r.now(), id)
	if err != nil {
		return 0, fmt.Errorf("%w: ステータス更新に失敗しました: %w", event.ErrPersistence, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: 更新結果の確認に失敗しました: %w", event.ErrPersistence, err)
	}
	return rowsAffected, nil
}

// インターフェースを満たしているか確認
var _ event.Repository = (*EventRepository)(nil)
