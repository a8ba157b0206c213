package handler

import (
	"context"

	"github.com/sanosuguru/go-event-board/internal/application"
	"github.com/sanosuguru/go-event-board/internal/domain/event"
)

// EventServiceInterface はイベントサービスのインターフェース
type EventServiceInterface interface {
	ListEvents(ctx context.Context, filter string) ([]*event.Event, error)
	CreateEvent(ctx context.Context, input application.CreateEventInput) (int64, error)
	GetEvent(ctx context.Context, id string) (*event.Event, error)
	UpdateEventStatus(ctx context.Context, id, status string) error
}

// Pinger は依存サービスの疎通確認を行う
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc は関数をPingerとして扱う
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }
