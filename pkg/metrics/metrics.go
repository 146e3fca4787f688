// Package metrics exposes Prometheus collectors for upload and listing outcomes.
package metrics

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records pipeline and listing activity. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	uploads        *prometheus.CounterVec
	uploadBytes    *prometheus.CounterVec
	uploadDuration *prometheus.HistogramVec
	listings       *prometheus.CounterVec
}

var (
	defaultOnce sync.Once
	shared      *Metrics
)

// Default returns the instance registered with the global Prometheus registry.
func Default() *Metrics {
	defaultOnce.Do(func() {
		shared = MustNew(prometheus.DefaultRegisterer)
	})
	return shared
}

// MustNew registers the collectors with reg and panics on any registration
// error other than an identical collector already being present, in which
// case the existing one is reused.
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ueditor",
			Subsystem: "upload",
			Name:      "requests_total",
			Help:      "Upload requests by kind and resulting state.",
		}, []string{"kind", "state"}),
		uploadBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ueditor",
			Subsystem: "upload",
			Name:      "stored_bytes_total",
			Help:      "Bytes written to storage by successful uploads.",
		}, []string{"kind"}),
		uploadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ueditor",
			Subsystem: "upload",
			Name:      "duration_seconds",
			Help:      "Time spent handling one upload, including remote fetches.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		listings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ueditor",
			Subsystem: "listing",
			Name:      "requests_total",
			Help:      "Listing requests by category and resulting state.",
		}, []string{"category", "state"}),
	}

	m.uploads = register(reg, m.uploads)
	m.uploadBytes = register(reg, m.uploadBytes)
	m.uploadDuration = register(reg, m.uploadDuration)
	m.listings = register(reg, m.listings)
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// ObserveUpload records one finished upload. size is only counted for SUCCESS.
func (m *Metrics) ObserveUpload(kind, state string, size int64, d time.Duration) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(kind, state).Inc()
	m.uploadDuration.WithLabelValues(kind).Observe(d.Seconds())
	if state == "SUCCESS" && size > 0 {
		m.uploadBytes.WithLabelValues(kind).Add(float64(size))
	}
}

// ObserveListing records one listing request.
func (m *Metrics) ObserveListing(category, state string) {
	if m == nil {
		return
	}
	m.listings.WithLabelValues(category, state).Inc()
}
