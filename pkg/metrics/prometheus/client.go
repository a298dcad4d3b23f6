// Package prometheus exposes metrics.Client on a dedicated Prometheus registry.
package prometheus

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/architeacher/persons/pkg/metrics"
)

type (
	Client struct {
		namespace  string
		registry   *prometheus.Registry
		mu         sync.Mutex
		counters   map[string]*prometheus.CounterVec
		histograms map[string]*prometheus.HistogramVec
	}
)

func NewClient(namespace string) *Client {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Client{
		namespace:  metrics.SanitizeName("", namespace),
		registry:   registry,
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

// Registry is exposed for tests that gather collected families.
func (c *Client) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Client) Inc(_ context.Context, key string, value any, attributes ...attribute.KeyValue) {
	delta, ok := toFloat(value)
	if !ok || delta < 0 {
		return
	}

	vec, err := c.counter(key, metrics.LabelNames(attributes))
	if err != nil {
		return
	}

	vec.With(metrics.LabelValues(attributes)).Add(delta)
}

func (c *Client) Observe(_ context.Context, key string, value float64, attributes ...attribute.KeyValue) {
	vec, err := c.histogram(key, metrics.LabelNames(attributes))
	if err != nil {
		return
	}

	vec.With(metrics.LabelValues(attributes)).Observe(value)
}

func (c *Client) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Client) Shutdown(_ context.Context) error {
	return nil
}

func (c *Client) counter(key string, labels []string) (*prometheus.CounterVec, error) {
	name := metrics.SanitizeName(c.namespace, key)
	id := vecID(name, labels)

	c.mu.Lock()
	defer c.mu.Unlock()

	if vec, ok := c.counters[id]; ok {
		return vec, nil
	}

	if !strings.HasSuffix(name, "_total") {
		name += "_total"
	}

	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: name,
		Help: "Counter for " + key,
	}, labels)

	if err := c.registry.Register(vec); err != nil {
		return nil, err
	}

	c.counters[id] = vec

	return vec, nil
}

func (c *Client) histogram(key string, labels []string) (*prometheus.HistogramVec, error) {
	name := metrics.SanitizeName(c.namespace, key)
	id := vecID(name, labels)

	c.mu.Lock()
	defer c.mu.Unlock()

	if vec, ok := c.histograms[id]; ok {
		return vec, nil
	}

	buckets := prometheus.DefBuckets

	switch {
	case strings.HasSuffix(name, "_duration"):
		name += "_seconds"
	case strings.HasSuffix(name, "_bytes"):
		buckets = prometheus.ExponentialBuckets(256, 4, 8)
	}

	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    name,
		Help:    "Histogram for " + key,
		Buckets: buckets,
	}, labels)

	if err := c.registry.Register(vec); err != nil {
		return nil, err
	}

	c.histograms[id] = vec

	return vec, nil
}

func vecID(name string, labels []string) string {
	return name + "|" + strings.Join(labels, ",")
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
