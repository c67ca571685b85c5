package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var msBuckets = []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000}

var (
	PSGCLoadTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "phaddr_psgc_load_total",
		Help: "Reference dataset loads by result",
	}, []string{"result"})
	PSGCLoadDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "phaddr_psgc_load_duration_ms",
		Help:    "Reference dataset load duration in milliseconds",
		Buckets: msBuckets,
	})
	PSGCIndexUnits = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "phaddr_psgc_index_units",
		Help: "Distinct administrative units in the active index",
	}, []string{"tier"})
	CascadeRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "phaddr_cascade_requests_total",
		Help: "Total cascade API requests",
	}, []string{"endpoint"})
	CascadeRequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "phaddr_cascade_request_duration_ms",
		Help:    "Cascade API request duration in milliseconds",
		Buckets: msBuckets,
	}, []string{"endpoint"})
	CascadeUnknownCodeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "phaddr_cascade_unknown_code_total",
		Help: "Initial values that matched no option and fell back to the placeholder",
	}, []string{"tier"})
	CascadeDegradedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "phaddr_cascade_degraded_total",
		Help: "Cascades rendered with the unavailable placeholder",
	})
	AdminVerifyTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "phaddr_admin_verify_total",
		Help: "Admin status verification calls by result",
	}, []string{"result"})
	AdminCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "phaddr_admin_cache_hits_total",
		Help: "Admin status cache hits",
	})
	AdminCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "phaddr_admin_cache_misses_total",
		Help: "Admin status cache misses",
	})
	GeoHintTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "phaddr_geohint_total",
		Help: "Region hints from client IP by result",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(PSGCLoadTotal)
	prometheus.MustRegister(PSGCLoadDurationMs)
	prometheus.MustRegister(PSGCIndexUnits)
	prometheus.MustRegister(CascadeRequestsTotal)
	prometheus.MustRegister(CascadeRequestDurationMs)
	prometheus.MustRegister(CascadeUnknownCodeTotal)
	prometheus.MustRegister(CascadeDegradedTotal)
	prometheus.MustRegister(AdminVerifyTotal)
	prometheus.MustRegister(AdminCacheHitsTotal)
	prometheus.MustRegister(AdminCacheMissesTotal)
	prometheus.MustRegister(GeoHintTotal)
}

// 文档注释：返回 Prometheus 指标处理器，在主入口挂载到 {API_BASE}/metrics
func Handler() http.Handler { return promhttp.Handler() }
