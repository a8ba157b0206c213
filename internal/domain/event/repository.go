package event

import "context"

// Repository はイベントリポジトリのインターフェース
type Repository interface {
	// ListByFilter は upcoming / previous に該当するイベントを取得する
	// upcoming は日付の昇順、previous は日付の降順
	ListByFilter(ctx context.Context, filter Filter) ([]*Event, error)

	// Insert は新しいイベントを1行追加し、採番されたIDを返す
	Insert(ctx context.Context, event *Event) (int64, error)

	// GetByID はIDからイベントを取得する
	GetByID(ctx context.Context, id int64) (*Event, error)

	// UpdateStatus はステータスを無条件に更新し、影響行数を返す
	UpdateStatus(ctx context.Context, id int64, status Status) (int64, error)
}
