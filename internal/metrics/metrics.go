// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 申込処理の結果ラベル
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ワーカーやサービス層から利用する。
type MetricsCollector interface {
	RecordSweep(lectures int, duration time.Duration)
	RecordSweepFailure()
	RecordEnrollment(outcome string)
	RecordCancellation()
	RecordNotification(outcome string)
	RecordLogin(outcome string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	sweeps          prometheus.Counter
	sweepFail       prometheus.Counter
	sweepLatency    prometheus.Histogram
	lecturesUpdated prometheus.Counter
	enrollments     *prometheus.CounterVec
	cancellations   prometheus.Counter
	notifications   *prometheus.CounterVec
	logins          *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		sweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lecturehub_status_sweep_total",
			Help: "講義状態再計算の実行回数",
		}),
		sweepFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lecturehub_status_sweep_fail_total",
			Help: "講義状態再計算の失敗回数",
		}),
		sweepLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lecturehub_status_sweep_duration_seconds",
			Help:    "講義状態再計算の所要時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		lecturesUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lecturehub_lectures_status_written_total",
			Help: "状態を書き込んだ講義の合計数",
		}),
		enrollments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lecturehub_enrollments_total",
			Help: "講義申込の結果別件数",
		}, []string{"outcome"}),
		cancellations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lecturehub_enrollment_cancellations_total",
			Help: "講義申込取消の合計数",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lecturehub_notifications_total",
			Help: "申込完了通知の送信結果別件数",
		}, []string{"outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lecturehub_logins_total",
			Help: "Kakaoログインの結果別件数",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		c.sweeps,
		c.sweepFail,
		c.sweepLatency,
		c.lecturesUpdated,
		c.enrollments,
		c.cancellations,
		c.notifications,
		c.logins,
	)

	return c
}

// RecordSweep は状態再計算の完了を記録する。
func (c *Collector) RecordSweep(lectures int, duration time.Duration) {
	c.sweeps.Inc()
	c.lecturesUpdated.Add(float64(lectures))
	c.sweepLatency.Observe(duration.Seconds())
}

// RecordSweepFailure は状態再計算の失敗を記録する。
func (c *Collector) RecordSweepFailure() {
	c.sweepFail.Inc()
}

// RecordEnrollment は申込結果を記録する。
func (c *Collector) RecordEnrollment(outcome string) {
	c.enrollments.WithLabelValues(outcome).Inc()
}

// RecordCancellation は申込取消を記録する。
func (c *Collector) RecordCancellation() {
	c.cancellations.Inc()
}

// RecordNotification は通知送信結果を記録する。
func (c *Collector) RecordNotification(outcome string) {
	c.notifications.WithLabelValues(outcome).Inc()
}

// RecordLogin はログイン結果を記録する。
func (c *Collector) RecordLogin(outcome string) {
	c.logins.WithLabelValues(outcome).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop は何も記録しないMetricsCollector。
// メトリクスを注入しないテストや初期化前の呼び出しで使用する。
type Nop struct{}

func (Nop) RecordSweep(int, time.Duration) {}
func (Nop) RecordSweepFailure()            {}
func (Nop) RecordEnrollment(string)        {}
func (Nop) RecordCancellation()            {}
func (Nop) RecordNotification(string)      {}
func (Nop) RecordLogin(string)             {}

// compile-time interface check
var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)
