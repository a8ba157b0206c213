package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 作成されたイベント数（attachment: with, without）
	EventsCreatedTotal *prometheus.CounterVec

	// ステータス更新の総数（status: accepted/declined, result: updated/no_rows）
	StatusUpdatesTotal *prometheus.CounterVec

	// 添付ファイル保存の所要時間（driver: local/s3, status: success/failed）
	AttachmentStoreDuration *prometheus.HistogramVec

	// 一覧キャッシュの参照結果（result: hit, miss, error）
	ListCacheTotal *prometheus.CounterVec
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		EventsCreatedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "events_created_total",
				Help: "Total number of created events",
			},
			[]string{"attachment"},
		),
		StatusUpdatesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "event_status_updates_total",
				Help: "Total number of event status updates",
			},
			[]string{"status", "result"},
		),
		AttachmentStoreDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "attachment_store_duration_seconds",
				Help:    "Time spent storing uploaded attachments",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"driver", "status"},
		),
		ListCacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "event_list_cache_total",
				Help: "Event list cache lookups by result",
			},
			[]string{"result"},
		),
	}

	// レジストリに登録
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.EventsCreatedTotal,
		m.StatusUpdatesTotal,
		m.AttachmentStoreDuration,
		m.ListCacheTotal,
	)

	return m
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}
