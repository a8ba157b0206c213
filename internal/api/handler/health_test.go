package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-event-board/internal/domain/event"
)

func TestHealthHandler_Check(t *testing.T) {
	// Setup
	e := NewTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewHealthHandler(nil)

	// Act
	err := h.Check(c)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"timestamp"`)
	assert.NotContains(t, rec.Body.String(), `"checks"`)
}

func TestHealthHandler_Check_Dependencies(t *testing.T) {
	up := PingerFunc(func(context.Context) error { return nil })
	down := PingerFunc(func(context.Context) error { return errors.New("connection refused") })

	t.Run("全て正常なら200", func(t *testing.T) {
		e := NewTestEcho()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

		h := NewHealthHandler(map[string]Pinger{"postgres": up, "redis": up})
		require.NoError(t, h.Check(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, map[string]string{"postgres": "up", "redis": "up"}, resp.Checks)
	})

	t.Run("一つでも落ちていれば503", func(t *testing.T) {
		e := NewTestEcho()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

		h := NewHealthHandler(map[string]Pinger{"postgres": up, "redis": down})
		require.NoError(t, h.Check(c))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "down", resp.Checks["redis"])
		assert.Equal(t, "up", resp.Checks["postgres"])
	})
}

func TestToEventResponse(t *testing.T) {
	now := time.Now()
	path := "/qr-codes/abc-ticket.png"
	e := &event.Event{
		ID:         42,
		Title:      "Launch",
		Place:      "HQ",
		Gradient:   "g1",
		Icon:       "rocket",
		Date:       time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC),
		Time:       "10:00:00",
		Status:     event.StatusAccepted,
		QRCodePath: &path,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	resp := toEventResponse(e)

	assert.Equal(t, int64(42), resp.ID)
	assert.Equal(t, "Launch", resp.Title)
	assert.Equal(t, "HQ", resp.Place)
	assert.Equal(t, "g1", resp.Gradient)
	assert.Equal(t, "rocket", resp.Icon)
	assert.Equal(t, "2099-01-01", resp.Date)
	assert.Equal(t, "10:00:00", resp.Time)
	assert.Equal(t, "accepted", resp.Status)
	assert.Equal(t, &path, resp.QRCodePath)
	assert.Nil(t, resp.PhotoPath)
	assert.Equal(t, now.Format(time.RFC3339), resp.CreatedAt)
}

func TestToEventResponse_NullPaths(t *testing.T) {
	resp := toEventResponse(&event.Event{ID: 1, Date: time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)})

	b, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"qr_code_path":null`)
	assert.Contains(t, string(b), `"photo_path":null`)
}
