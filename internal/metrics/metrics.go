// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とHTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordRoleEnsured(created bool)
	RecordUserCreated(status string)
	RecordDocumentCreated()
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	rolesEnsured     *prometheus.CounterVec
	usersCreated     *prometheus.CounterVec
	documentsCreated prometheus.Counter
	httpStatus       *prometheus.CounterVec
	requestLatency   prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		rolesEnsured: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docvault_roles_ensured_total",
			Help: "ロール解決（find-or-create）の合計数（outcome別）",
		}, []string{"outcome"}),
		usersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docvault_users_created_total",
			Help: "ユーザー作成試行の合計数（結果ステータス別）",
		}, []string{"status"}),
		documentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docvault_documents_created_total",
			Help: "作成されたドキュメントの合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docvault_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "docvault_request_latency_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.rolesEnsured,
		c.usersCreated,
		c.documentsCreated,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordRoleEnsured はロール解決の結果（新規作成か既存再利用か）を記録する。
func (c *Collector) RecordRoleEnsured(created bool) {
	outcome := "reused"
	if created {
		outcome = "created"
	}
	c.rolesEnsured.WithLabelValues(outcome).Inc()
}

// RecordUserCreated はユーザー作成試行の結果ステータスを記録する。
func (c *Collector) RecordUserCreated(status string) {
	c.usersCreated.WithLabelValues(status).Inc()
}

// RecordDocumentCreated はドキュメント作成を記録する。
func (c *Collector) RecordDocumentCreated() {
	c.documentsCreated.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
