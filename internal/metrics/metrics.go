package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"buffdev/bufdev"
)

var _ bufdev.Observer = &Collector{}

// Collector records device operations as Prometheus metrics
type Collector struct {
	opens        *prometheus.CounterVec
	bytesRead    prometheus.Counter
	bytesWritten prometheus.Counter
	endOfDevice  *prometheus.CounterVec
	seeks        *prometheus.CounterVec
	position     prometheus.Gauge
	sessionOpen  prometheus.Gauge
}

// NewCollector creates and registers the device metrics on registry
func NewCollector(registry prometheus.Registerer) *Collector {
	factory := promauto.With(registry)

	return &Collector{
		opens: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buffdev_opens_total",
				Help: "Open attempts by result (ok, busy)",
			},
			[]string{"result"},
		),
		bytesRead: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "buffdev_bytes_read_total",
				Help: "Bytes copied out of the region",
			},
		),
		bytesWritten: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "buffdev_bytes_written_total",
				Help: "Bytes copied into the region",
			},
		),
		endOfDevice: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buffdev_end_of_device_total",
				Help: "Transfers rejected with no bytes left before capacity",
			},
			[]string{"op"},
		),
		seeks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buffdev_seeks_total",
				Help: "Seeks by origin",
			},
			[]string{"whence"},
		),
		position: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "buffdev_cursor_position",
				Help: "Cursor after the last transfer or seek",
			},
		),
		sessionOpen: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "buffdev_session_open",
				Help: "1 while a session is held",
			},
		),
	}
}

// Opened counts the attempt and marks the session held on success
func (c *Collector) Opened(ok bool) {
	if !ok {
		c.opens.WithLabelValues("busy").Inc()
		return
	}
	c.opens.WithLabelValues("ok").Inc()
	c.sessionOpen.Set(1)
}

// Closed clears the session gauge
func (c *Collector) Closed() { c.sessionOpen.Set(0) }

// BytesRead adds n to the read total and records the cursor
func (c *Collector) BytesRead(n int, pos int64) {
	c.bytesRead.Add(float64(n))
	c.position.Set(float64(pos))
}

// BytesWritten adds n to the write total and records the cursor
func (c *Collector) BytesWritten(n int, pos int64) {
	c.bytesWritten.Add(float64(n))
	c.position.Set(float64(pos))
}

// EndOfDevice counts a transfer rejected at capacity
func (c *Collector) EndOfDevice(op string) { c.endOfDevice.WithLabelValues(op).Inc() }

// Seeked counts the seek by origin and records the cursor
func (c *Collector) Seeked(whence bufdev.Whence, pos int64) {
	c.seeks.WithLabelValues(whence.String()).Inc()
	c.position.Set(float64(pos))
}

// Handler serves the metrics gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
