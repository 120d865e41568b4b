package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Provider 是 handler 层依赖的指标接口，测试中可替换为 Noop。
type Provider interface {
	ObserveRequest(method, route string, status int, duration time.Duration)
	IncrementContentOperation(entity, operation string, success bool)
	IncrementAuthorizationDenial(entity string)
}

type PrometheusProvider struct{}

func NewPrometheusProvider() Provider {
	return &PrometheusProvider{}
}

func (p *PrometheusProvider) ObserveRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (p *PrometheusProvider) IncrementContentOperation(entity, operation string, success bool) {
	ContentOperationsTotal.WithLabelValues(entity, operation, strconv.FormatBool(success)).Inc()
}

func (p *PrometheusProvider) IncrementAuthorizationDenial(entity string) {
	AuthorizationDenialsTotal.WithLabelValues(entity).Inc()
}

// Noop discards all observations.
type Noop struct{}

func (Noop) ObserveRequest(string, string, int, time.Duration) {}
func (Noop) IncrementContentOperation(string, string, bool)    {}
func (Noop) IncrementAuthorizationDenial(string)               {}

// Middleware 以路由模板（而非实际路径）为标签记录请求数与耗时。
func Middleware(p Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		p.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
