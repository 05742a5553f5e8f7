package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var (
	reportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bikeshare",
			Name:      "reports_total",
			Help:      "Reports built, partitioned by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)

	reportDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bikeshare",
			Name:      "report_seconds",
			Help:      "Time spent filtering, aggregating and rendering one request.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"endpoint"},
	)

	datasetReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bikeshare",
			Name:      "dataset_reloads_total",
			Help:      "Dataset loads, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	datasetRows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "bikeshare",
			Name:      "dataset_rows",
			Help:      "Rows in the currently loaded dataset.",
		},
	)
)

// Register 注册全部指标, 重复注册时忽略
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		reportsTotal,
		reportDurationSeconds,
		datasetReloadsTotal,
		datasetRows,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveReport 记录一次请求的耗时与结果
func ObserveReport(endpoint string, duration time.Duration, outcome string) {
	reportsTotal.WithLabelValues(endpoint, label(outcome)).Inc()
	if duration < 0 {
		duration = 0
	}
	reportDurationSeconds.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// ObserveReload 记录一次数据加载, rows 仅在成功时更新
func ObserveReload(rows int, err error) {
	if err != nil {
		datasetReloadsTotal.WithLabelValues(OutcomeError).Inc()
		return
	}
	datasetReloadsTotal.WithLabelValues(OutcomeSuccess).Inc()
	datasetRows.Set(float64(rows))
}

func label(outcome string) string {
	if outcome != OutcomeError {
		return OutcomeSuccess
	}
	return outcome
}
