// ============================================================================
// taskgen Metrics - Prometheus 監控指標
// ============================================================================
//
// Package: internal/metrics
// 文件: metrics.go
// 功能: 收集產生流程的運行指標
//
// 指標分類:
//
//   1. 計數器 (Counter):
//      - taskgen_runs_generated_total: 已寫入檔案的流程總數
//      - taskgen_tasks_generated_total: 已寫入檔案的任務總數
//      - taskgen_archive_write_failures_total: 檔案寫入失敗次數
//
//   2. 分佈 (Histogram):
//      - taskgen_run_task_count: 每次流程的任務數量分佈（桶 1..20）
//
//   3. 狀態 (Gauge):
//      - taskgen_last_run_timestamp_seconds: 最近一次成功寫入的時間
//
// 輸出方式:
//   程式為一次性執行，不啟動 HTTP 伺服器。
//   指定 --metrics-file 時以 Prometheus textfile 格式寫出，
//   供 node_exporter textfile collector 讀取。
//
// ============================================================================

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector Prometheus 指標收集器
type Collector struct {
	registry *prometheus.Registry

	runsGenerated  prometheus.Counter
	tasksGenerated prometheus.Counter
	writeFailures  prometheus.Counter

	runTaskCount prometheus.Histogram
	lastRun      prometheus.Gauge
}

// NewCollector 創建新的指標收集器，註冊於獨立的 registry
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		runsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskgen_runs_generated_total",
			Help: "Total number of generation runs appended to the archive",
		}),
		tasksGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskgen_tasks_generated_total",
			Help: "Total number of task records appended to the archive",
		}),
		writeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskgen_archive_write_failures_total",
			Help: "Total number of failed archive writes",
		}),
		runTaskCount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "taskgen_run_task_count",
			Help:    "Number of tasks generated per run",
			Buckets: prometheus.LinearBuckets(1, 1, 20),
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "taskgen_last_run_timestamp_seconds",
			Help: "Unix time of the last run appended to the archive",
		}),
	}

	c.registry.MustRegister(
		c.runsGenerated,
		c.tasksGenerated,
		c.writeFailures,
		c.runTaskCount,
		c.lastRun,
	)

	return c
}

// RecordRun 記錄一次成功寫入的流程
func (c *Collector) RecordRun(tasks int, at time.Time) {
	c.runsGenerated.Inc()
	c.tasksGenerated.Add(float64(tasks))
	c.runTaskCount.Observe(float64(tasks))
	c.lastRun.Set(float64(at.Unix()))
}

// RecordWriteFailure 記錄檔案寫入失敗
func (c *Collector) RecordWriteFailure() {
	c.writeFailures.Inc()
}

// Gatherer 回傳底層 registry，用於測試與輸出
func (c *Collector) Gatherer() prometheus.Gatherer {
	return c.registry
}

// WriteTextfile 以 Prometheus 文本格式寫出所有指標
//
// 寫入使用暫存檔加重新命名，讀取端不會看到寫到一半的檔案。
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
