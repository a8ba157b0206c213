package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedMsg  string
	}{
		{
			name:         "HTTPErrorはそのまま返す",
			err:          echo.NewHTTPError(http.StatusNotFound, "イベントが見つかりません"),
			expectedCode: http.StatusNotFound,
			expectedMsg:  "イベントが見つかりません",
		},
		{
			name:         "原因付きの500は汎用メッセージ",
			err:          echo.NewHTTPError(http.StatusInternalServerError, "イベントの作成に失敗しました").SetInternal(errors.New("db down")),
			expectedCode: http.StatusInternalServerError,
			expectedMsg:  "イベントの作成に失敗しました",
		},
		{
			name:         "未知のエラーは500",
			err:          errors.New("boom"),
			expectedCode: http.StatusInternalServerError,
			expectedMsg:  "内部サーバーエラー",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			CustomHTTPErrorHandler(tt.err, c)

			assert.Equal(t, tt.expectedCode, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedMsg, resp.Error)
			assert.Equal(t, tt.expectedCode, resp.Code)
		})
	}
}

func TestCustomHTTPErrorHandler_Head(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodHead, "/api/events/1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	CustomHTTPErrorHandler(echo.NewHTTPError(http.StatusNotFound, "not found"), c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestCustomValidator(t *testing.T) {
	type request struct {
		Title string `validate:"required"`
	}
	v := NewValidator()

	assert.NoError(t, v.Validate(&request{Title: "Launch"}))

	err := v.Validate(&request{})
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
	assert.NotNil(t, he.Internal)
}
