package hsafgrib

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts the reader's file and dataset activity. A nil *Metrics
// records nothing.
type Metrics struct {
	FilesOpened     *prometheus.CounterVec
	MessagesDecoded prometheus.Counter
	DatasetsLoaded  *prometheus.CounterVec
	DecodeErrors    *prometheus.CounterVec
	DecodeDuration  *prometheus.HistogramVec
}

// NewMetrics creates the reader metrics. Register them with Register.
func NewMetrics() *Metrics {
	return &Metrics{
		FilesOpened: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hsafgrib",
				Subsystem: "files",
				Name:      "opened_total",
				Help:      "Total number of GRIB file opens",
			},
			[]string{"status"},
		),

		MessagesDecoded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "hsafgrib",
				Subsystem: "messages",
				Name:      "decoded_total",
				Help:      "Total number of GRIB messages read",
			},
		),

		DatasetsLoaded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hsafgrib",
				Subsystem: "datasets",
				Name:      "loaded_total",
				Help:      "Total number of datasets loaded",
			},
			[]string{"product"},
		),

		DecodeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hsafgrib",
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of decode errors",
			},
			[]string{"kind"},
		),

		DecodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "hsafgrib",
				Subsystem: "decode",
				Name:      "duration_seconds",
				Help:      "Time spent opening a file and reading one message",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
			},
			[]string{"operation"},
		),
	}
}

// Register registers every metric with reg. A metric that reg already
// holds is replaced in m by the registered collector, so both report the
// same series.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	var err error
	if m.FilesOpened, err = register(reg, m.FilesOpened); err != nil {
		return err
	}
	if m.MessagesDecoded, err = register(reg, m.MessagesDecoded); err != nil {
		return err
	}
	if m.DatasetsLoaded, err = register(reg, m.DatasetsLoaded); err != nil {
		return err
	}
	if m.DecodeErrors, err = register(reg, m.DecodeErrors); err != nil {
		return err
	}
	if m.DecodeDuration, err = register(reg, m.DecodeDuration); err != nil {
		return err
	}
	return nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return c, err
	}
	existing, ok := are.ExistingCollector.(C)
	if !ok {
		return c, fmt.Errorf("%w: registered collector is %T", err, are.ExistingCollector)
	}
	return existing, nil
}

func (m *Metrics) fileOpened(err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.FilesOpened.WithLabelValues(status).Inc()
}

func (m *Metrics) messageDecoded() {
	if m == nil {
		return
	}
	m.MessagesDecoded.Inc()
}

func (m *Metrics) datasetLoaded(product string) {
	if m == nil {
		return
	}
	m.DatasetsLoaded.WithLabelValues(product).Inc()
}

func (m *Metrics) decodeError(kind string) {
	if m == nil {
		return
	}
	m.DecodeErrors.WithLabelValues(kind).Inc()
}

func (m *Metrics) observe(op string, d time.Duration) {
	if m == nil {
		return
	}
	m.DecodeDuration.WithLabelValues(op).Observe(d.Seconds())
}
