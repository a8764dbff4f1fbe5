package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// httpRequestsTotal 记录 HTTP 请求总数
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "filedeck",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration 记录 HTTP 请求耗时
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "filedeck",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// httpResponseSize 记录响应大小，文件服务器下载是主要来源
	httpResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "filedeck",
			Name:      "http_response_size_bytes",
			Help:      "HTTP response size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// activeRequests 当前活跃请求数，不含已升级的 websocket 连接
	activeRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "filedeck",
		Name:      "http_active_requests",
		Help:      "Number of active HTTP requests",
	})

	// upgradedConnections 累计升级为 websocket 的请求数
	upgradedConnections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "filedeck",
			Name:      "http_upgraded_connections_total",
			Help:      "Total number of requests upgraded to websocket",
		},
		[]string{"path"},
	)
)

// Metrics 创建 Prometheus 指标收集中间件
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			activeRequests.Inc()

			rw := newStatusRecorder(w)
			next.ServeHTTP(rw, r)

			activeRequests.Dec()
			routePattern := routePatternOf(r)

			if rw.hijacked {
				upgradedConnections.WithLabelValues(routePattern).Inc()
				return
			}

			method := r.Method
			status := strconv.Itoa(rw.statusCode)

			httpRequestsTotal.WithLabelValues(method, routePattern, status).Inc()
			httpRequestDuration.WithLabelValues(method, routePattern).Observe(time.Since(start).Seconds())
			httpResponseSize.WithLabelValues(method, routePattern).Observe(float64(rw.bytes))
		})
	}
}

// routePatternOf 取路由模式而非实际路径，避免高基数
func routePatternOf(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return "unknown"
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return "unknown"
}
