package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-event-board/internal/api"
	"github.com/sanosuguru/go-event-board/internal/api/handler"
	"github.com/sanosuguru/go-event-board/internal/api/middleware"
	"github.com/sanosuguru/go-event-board/internal/application"
	"github.com/sanosuguru/go-event-board/internal/config"
	"github.com/sanosuguru/go-event-board/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-event-board/internal/infrastructure/redis"
	"github.com/sanosuguru/go-event-board/internal/infrastructure/storage"
)

// redisTestDB はE2Eテスト専用のRedis DB番号
const redisTestDB = 14

var (
	testServer  *TestServer
	testDB      *sqlx.DB
	redisClient *redis.Client
)

// TestServer はE2Eテスト用のサーバー
type TestServer struct {
	Echo  *echo.Echo
	Store *storage.LocalStore
}

// TestMain はE2Eテストのエントリポイント
// パッケージ全体で1回だけサーバーを起動することで高速化
func TestMain(m *testing.M) {
	cfg := config.Load()

	// DB接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		os.Exit(0) // DB未起動時はスキップ
	}
	testDB = db
	if err := postgres.RunMigrations(db.DB, "../migrations"); err != nil {
		db.Close()
		os.Exit(1)
	}

	// Redisは任意。起動していれば一覧キャッシュも通す
	var cache application.ListCache
	checks := map[string]handler.Pinger{
		"postgres": handler.PingerFunc(func(ctx context.Context) error { return postgres.Ping(ctx, db) }),
	}
	cfg.Redis.DB = redisTestDB
	if rc, err := redisinfra.NewClient(&cfg.Redis); err == nil {
		redisClient = rc
		cache = redisinfra.NewEventListCache(rc, cfg.Cache.TTL)
		checks["redis"] = handler.PingerFunc(func(ctx context.Context) error { return redisinfra.Ping(ctx, rc) })
	}

	dir, err := os.MkdirTemp("", "qr-codes-e2e")
	if err != nil {
		db.Close()
		os.Exit(1)
	}
	store := storage.NewLocalStore(dir, "/qr-codes")

	eventService := application.NewEventService(postgres.NewEventRepository(db), store, cache, nil)

	// Echo セットアップ
	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	middleware.SetupMiddleware(e, &cfg.Server)
	handler.RegisterRoutes(e, handler.NewEventHandler(eventService), handler.NewHealthHandler(checks))
	e.Static("/qr-codes", store.Dir())

	testServer = &TestServer{Echo: e, Store: store}

	code := m.Run()

	// 最終クリーンアップ
	cleanupTables()
	if redisClient != nil {
		redisClient.Close()
	}
	db.Close()
	os.RemoveAll(dir)

	os.Exit(code)
}

// cleanupTables はテーブルとキャッシュをクリーンアップ
func cleanupTables() {
	testDB.Exec("TRUNCATE TABLE events RESTART IDENTITY")
	if redisClient != nil {
		redisClient.FlushDB(context.Background())
	}
}

// getTestServer は共有サーバーを取得（テスト前にテーブルをクリーンアップ）
func getTestServer(t *testing.T) *TestServer {
	t.Helper()
	if testServer == nil {
		t.Skip("テスト環境が利用できません")
	}
	cleanupTables()
	return testServer
}

// Request はJSONリクエストを実行
func (s *TestServer) Request(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(reqBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

// CreateEvent は multipart フォームでイベントを作成する
// qrName が空なら添付なし
func (s *TestServer) CreateEvent(t *testing.T, fields map[string]string, qrName string, qr []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if qrName != "" {
		fw, err := w.CreateFormFile("qrCode", qrName)
		require.NoError(t, err)
		_, err = io.Copy(fw, bytes.NewReader(qr))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/events", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())

	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}
