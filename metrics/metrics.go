package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nwerner/alog/async"
)

// Collector exports an AsyncLogger's statistics to Prometheus.
type Collector struct {
	controller *async.AsyncLogger

	flushCycles   *prometheus.Desc
	dropped       *prometheus.Desc
	blocked       *prometheus.Desc
	processed     *prometheus.Desc
	bufferedBytes *prometheus.Desc
	sinkBytes     *prometheus.Desc
}

// NewCollector creates a collector for the given controller. Register
// it with a prometheus.Registry to expose the metrics.
func NewCollector(controller *async.AsyncLogger) *Collector {
	return &Collector{
		controller: controller,
		flushCycles: prometheus.NewDesc(
			"alog_flush_cycles_total",
			"Completed drain-and-write cycles of the writer goroutine",
			nil, nil,
		),
		dropped: prometheus.NewDesc(
			"alog_records_dropped_total",
			"Records discarded under the DropNewest overflow policy",
			nil, nil,
		),
		blocked: prometheus.NewDesc(
			"alog_writes_blocked_total",
			"Write calls that had to wait for buffer capacity",
			nil, nil,
		),
		processed: prometheus.NewDesc(
			"alog_records_processed_total",
			"Records forwarded to the wrapped sink",
			nil, nil,
		),
		bufferedBytes: prometheus.NewDesc(
			"alog_buffered_bytes",
			"Estimated bytes currently held in the double buffers",
			nil, nil,
		),
		sinkBytes: prometheus.NewDesc(
			"alog_sink_size_bytes",
			"Approximate size reported by the wrapped sink",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.flushCycles
	ch <- c.dropped
	ch <- c.blocked
	ch <- c.processed
	ch <- c.bufferedBytes
	ch <- c.sinkBytes
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.controller.Stats()

	ch <- prometheus.MustNewConstMetric(c.flushCycles, prometheus.CounterValue, float64(s.FlushCycles))
	ch <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue, float64(s.DroppedTotal))
	ch <- prometheus.MustNewConstMetric(c.blocked, prometheus.CounterValue, float64(s.BlockedTotal))
	ch <- prometheus.MustNewConstMetric(c.processed, prometheus.CounterValue, float64(s.ProcessedTotal))
	ch <- prometheus.MustNewConstMetric(c.bufferedBytes, prometheus.GaugeValue, float64(c.controller.BufferedBytes()))
	ch <- prometheus.MustNewConstMetric(c.sinkBytes, prometheus.GaugeValue, float64(c.controller.LogSize()))
}
