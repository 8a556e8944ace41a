package telemetry

import (
	"net/http"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/prometheus/common/expfmt"
)

var (
	gaugeMetricMap   = map[string]prometheus.Gauge{}
	gaugeMetricMutex = sync.Mutex{}

	// MetricServer is the push gateway address, pushing is skipped when empty
	MetricServer string

	panicMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "panics_recovered",
	}, []string{"entity", "msg"})
)

const metricsPushJob = "sentinel_push"

func LogPanic(entity string, message string) {
	panicMetric.WithLabelValues(entity, message).Inc()
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}

func getKey(metric string, labels map[string]string) string {
	key := metric
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		key += "/" + name + ":" + labels[name]
	}
	return key
}

// NewGauge returns the registered gauge for the metric and labels, registering it on first use.
func NewGauge(metric string, labels map[string]string) prometheus.Gauge {
	metricKey := getKey(metric, labels)

	gaugeMetricMutex.Lock()
	defer gaugeMetricMutex.Unlock()

	if existing, ok := gaugeMetricMap[metricKey]; ok {
		return existing
	}
	gauge := promauto.NewGauge(prometheus.GaugeOpts{Name: metric, ConstLabels: labels})
	gaugeMetricMap[metricKey] = gauge
	return gauge
}

func SetGaugeViaPush(name string, labels map[string]string, val float64) error {
	if MetricServer == "" {
		return nil
	}
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        name,
		ConstLabels: labels,
	})
	gauge.Set(val)

	return push.New(MetricServer, metricsPushJob).
		Format(expfmt.FmtText).
		Collector(gauge).
		Push()
}
