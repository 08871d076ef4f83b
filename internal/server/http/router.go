package http

import (
	"github.com/dmitrijs2005/memberkeeper/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the collaborators of the HTTP transport. Metrics and
// Gatherer are optional.
type Dependencies struct {
	Accounts AccountService
	Gate     AccessGate
	Logger   logging.Logger
	Metrics  *HTTPMetrics
	Gatherer prometheus.Gatherer
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(d Dependencies) *gin.Engine {
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := gin.New()
	r.Use(gin.Recovery(), d.Metrics.Handler(), RequestLogger(d.Logger))

	r.GET("/healthz", Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	h := NewHandler(d.Accounts)
	users := r.Group("/api/users")
	users.POST("/signup", h.Signup)
	users.POST("/login", h.Login)
	users.GET("/me", RequireAuth(d.Gate), h.Me)

	return r
}
