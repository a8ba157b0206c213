package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-board/internal/application"
	"github.com/sanosuguru/go-event-board/internal/domain/event"
)

// qrCodeField はQRコード画像のフォームフィールド名
const qrCodeField = "qrCode"

type EventHandler struct {
	eventService EventServiceInterface
}

func NewEventHandler(eventService EventServiceInterface) *EventHandler {
	return &EventHandler{eventService: eventService}
}

type CreateEventRequest struct {
	Title    string `form:"title" validate:"required" example:"Launch"`
	Place    string `form:"place" validate:"required" example:"HQ"`
	Gradient string `form:"gradient" validate:"required" example:"g1"`
	Icon     string `form:"icon" validate:"required" example:"rocket"`
	Date     string `form:"date" validate:"required" example:"2099-01-01"`
	Time     string `form:"time" validate:"required" example:"10:00"`
}

type CreateEventResponse struct {
	Message string `json:"message" example:"イベントを作成しました"`
	ID      int64  `json:"id" example:"1"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required" example:"accepted"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type EventResponse struct {
	ID         int64   `json:"id" example:"1"`
	Title      string  `json:"title" example:"Launch"`
	Place      string  `json:"place" example:"HQ"`
	Gradient   string  `json:"gradient" example:"g1"`
	Icon       string  `json:"icon" example:"rocket"`
	Date       string  `json:"date" example:"2099-01-01"`
	Time       string  `json:"time" example:"10:00:00"`
	Status     string  `json:"status" example:"pending"`
	QRCodePath *string `json:"qr_code_path" example:"/qr-codes/0190c6e2-ticket.png"`
	PhotoPath  *string `json:"photo_path"`
	CreatedAt  string  `json:"created_at" example:"2026-10-16T10:00:00+09:00"`
	UpdatedAt  string  `json:"updated_at" example:"2026-10-16T10:00:00+09:00"`
}

func toEventResponse(e *event.Event) *EventResponse {
	return &EventResponse{
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
		CreatedAt:  e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  e.UpdatedAt.Format(time.RFC3339),
	}
}

// toHTTPError はサービスのエラーをHTTPエラーに変換する
// 入力不備は 400、未存在は 404、それ以外は fallback のメッセージで 500 とする
func toHTTPError(err error, fallback string) *echo.HTTPError {
	switch {
	case errors.Is(err, event.ErrInvalidFilter),
		errors.Is(err, event.ErrMissingFields),
		errors.Is(err, event.ErrInvalidDateTime),
		errors.Is(err, event.ErrInvalidID),
		errors.Is(err, event.ErrInvalidStatus):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	case errors.Is(err, event.ErrEventNotFound):
		return echo.NewHTTPError(http.StatusNotFound, event.ErrEventNotFound.Error()).SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, fallback).SetInternal(err)
	}
}

// List godoc
// @Summary イベント一覧を取得
// @Description 今日を基準に upcoming / previous で絞り込んだ一覧を返します
// @Tags events
// @Produce json
// @Param filter query string true "upcoming または previous"
// @Success 200 {array} EventResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /api/events [get]
func (h *EventHandler) List(c echo.Context) error {
	events, err := h.eventService.ListEvents(c.Request().Context(), c.QueryParam("filter"))
	if err != nil {
		return toHTTPError(err, "イベント一覧の取得に失敗しました")
	}

	responses := make([]*EventResponse, len(events))
	for i, e := range events {
		responses[i] = toEventResponse(e)
	}
	return c.JSON(http.StatusOK, responses)
}

// Create godoc
// @Summary イベントを作成
// @Description multipart フォームでイベントを作成します。qrCode は任意です
// @Tags events
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "タイトル"
// @Param place formData string true "場所"
// @Param gradient formData string true "グラデーション"
// @Param icon formData string true "アイコン"
// @Param date formData string true "日付 (YYYY-MM-DD)"
// @Param time formData string true "時刻 (HH:MM)"
// @Param qrCode formData file false "QRコード画像"
// @Success 201 {object} CreateEventResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /api/events [post]
func (h *EventHandler) Create(c echo.Context) error {
	var req CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です").SetInternal(err)
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, event.ErrMissingFields.Error()).SetInternal(err)
	}

	input := application.CreateEventInput{
		Title:    req.Title,
		Place:    req.Place,
		Gradient: req.Gradient,
		Icon:     req.Icon,
		Date:     req.Date,
		Time:     req.Time,
	}

	fh, err := c.FormFile(qrCodeField)
	switch {
	case err == nil:
		src, err := fh.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "添付ファイルを読み込めません").SetInternal(err)
		}
		defer src.Close()
		input.QRCode = &application.Attachment{Name: fh.Filename, Content: src}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// 添付なし
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です").SetInternal(err)
	}

	id, err := h.eventService.CreateEvent(c.Request().Context(), input)
	if err != nil {
		return toHTTPError(err, "イベントの作成に失敗しました")
	}

	return c.JSON(http.StatusCreated, CreateEventResponse{
		Message: "イベントを作成しました",
		ID:      id,
	})
}

// GetByID godoc
// @Summary イベントを取得
// @Description 指定IDのイベントを取得します
// @Tags events
// @Produce json
// @Param id path int true "イベントID"
// @Success 200 {object} EventResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /api/events/{id} [get]
func (h *EventHandler) GetByID(c echo.Context) error {
	e, err := h.eventService.GetEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err, "イベントの取得に失敗しました")
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// UpdateStatus godoc
// @Summary ステータスを更新
// @Description イベントを accepted または declined にします
// @Tags events
// @Accept json
// @Produce json
// @Param id path int true "イベントID"
// @Param request body UpdateStatusRequest true "新しいステータス"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /api/events/{id}/status [put]
func (h *EventHandler) UpdateStatus(c echo.Context) error {
	var req UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です").SetInternal(err)
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, event.ErrInvalidStatus.Error()).SetInternal(err)
	}

	if err := h.eventService.UpdateEventStatus(c.Request().Context(), c.Param("id"), req.Status); err != nil {
		return toHTTPError(err, "ステータスの更新に失敗しました")
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "ステータスを更新しました"})
}
