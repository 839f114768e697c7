package metrics

import "github.com/prometheus/client_golang/prometheus"

// DashboardMetrics exposes counters/histograms for dashboard derivation.
type DashboardMetrics struct {
	buildTotal    *prometheus.CounterVec
	buildLatency  *prometheus.HistogramVec
	cacheTotal    *prometheus.CounterVec
	bucketCounted *prometheus.CounterVec
}

func NewDashboardMetrics(reg prometheus.Registerer) *DashboardMetrics {
	m := &DashboardMetrics{
		buildTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salesops",
			Subsystem: "dashboard",
			Name:      "build_total",
			Help:      "Total dashboard builds by role and outcome",
		}, []string{"role", "status"}),
		buildLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "salesops",
			Subsystem: "dashboard",
			Name:      "build_latency_seconds",
			Help:      "Latency of dashboard derivation",
			Buckets:   prometheus.DefBuckets,
		}, []string{"role"}),
		cacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salesops",
			Subsystem: "dashboard",
			Name:      "cache_total",
			Help:      "Dashboard cache lookups by result",
		}, []string{"role", "result"}),
		bucketCounted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salesops",
			Subsystem: "meetings",
			Name:      "classified_total",
			Help:      "Meetings classified during dashboard builds, by bucket",
		}, []string{"bucket"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.buildTotal, m.buildLatency, m.cacheTotal, m.bucketCounted)
	return m
}

func (m *DashboardMetrics) ObserveBuild(role, status string, seconds float64) {
	if m == nil {
		return
	}
	m.buildTotal.WithLabelValues(role, status).Inc()
	m.buildLatency.WithLabelValues(role).Observe(seconds)
}

func (m *DashboardMetrics) ObserveCache(role string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheTotal.WithLabelValues(role, result).Inc()
}

func (m *DashboardMetrics) ObserveClassified(bucket string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.bucketCounted.WithLabelValues(bucket).Add(float64(n))
}
