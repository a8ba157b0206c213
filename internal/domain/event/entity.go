package event

import (
	"fmt"
	"time"
)

const (
	// DateLayout は日付の入出力形式
	DateLayout = "2006-01-02"
	// TimeLayout は時刻の保存形式
	TimeLayout = "15:04:05"
)

// Status はイベントの承認状態を表す
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
)

// Filter は現在日付を基準にした一覧の絞り込み条件
type Filter string

const (
	FilterUpcoming Filter = "upcoming"
	FilterPrevious Filter = "previous"
)

// Filters は受け付ける全フィルター
var Filters = []Filter{FilterUpcoming, FilterPrevious}

// ParseFilter は文字列をFilterに変換する
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case FilterUpcoming, FilterPrevious:
		return f, nil
	}
	return "", ErrInvalidFilter
}

// ValidateStatusChange はステータス変更の可否を判定する
// 遷移元は見ず、変更先が accepted / declined であれば許可する（pending へは戻せない）
func ValidateStatusChange(target Status) error {
	switch target {
	case StatusAccepted, StatusDeclined:
		return nil
	}
	return ErrInvalidStatus
}

// Event はイベントエンティティを表す
type Event struct {
	ID         int64
	Title      string
	Place      string
	Gradient   string
	Icon       string
	Date       time.Time // 日付のみ意味を持つ
	Time       string    // HH:MM:SS
	Status     Status
	QRCodePath *string
	PhotoPath  *string // 読み取り専用。書き込み経路はない
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewEvent は新しいイベントを作成する
func NewEvent(title, place, gradient, icon string, date time.Time, clock string, qrCodePath *string) *Event {
	now := time.Now()
	return &Event{
		Title:      title,
		Place:      place,
		Gradient:   gradient,
		Icon:       icon,
		Date:       date,
		Time:       clock,
		Status:     StatusPending,
		QRCodePath: qrCodePath,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate はイベントの検証を行う
func (e *Event) Validate() error {
	if e.Title == "" || e.Place == "" || e.Gradient == "" || e.Icon == "" || e.Time == "" || e.Date.IsZero() {
		return ErrMissingFields
	}
	return nil
}

// Classify は now を基準に upcoming / previous を判定する
// 日付が今日より前なら previous、今日以降なら upcoming
// リポジトリの一覧クエリはこの判定をSQLで実装している
func (e *Event) Classify(now time.Time) Filter {
	if dateOnly(e.Date).Before(Today(now)) {
		return FilterPrevious
	}
	return FilterUpcoming
}

// DateString は日付を YYYY-MM-DD で返す
func (e *Event) DateString() string {
	return e.Date.Format(DateLayout)
}

// Today は now の暦日を UTC の 0 時で返す
func Today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate は YYYY-MM-DD 形式の日付を解析する
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date=%q", ErrInvalidDateTime, s)
	}
	return d, nil
}

// ParseClock は HH:MM または HH:MM:SS を解析し、HH:MM:SS に正規化する
func ParseClock(s string) (string, error) {
	for _, layout := range []string{TimeLayout, "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(TimeLayout), nil
		}
	}
	return "", fmt.Errorf("%w: time=%q", ErrInvalidDateTime, s)
}
