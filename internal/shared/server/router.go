package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docarchive/internal/documents"
	"docarchive/internal/ingest"
	"docarchive/internal/services/health"
	"docarchive/internal/shared/config"
	"docarchive/internal/shared/metrics"
	"docarchive/internal/shared/server/middleware"
	"docarchive/internal/shared/server/respond"
	"docarchive/internal/uploads"
)

// RouterDeps carries the handlers the router mounts. Uploads may be nil when
// no object store is configured.
type RouterDeps struct {
	Config    config.Config
	Documents *documents.Handler
	Ingest    *ingest.Handler
	Uploads   *uploads.Handler
	Health    *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.Metrics(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())
	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.OK(c, health.Status{OK: true, Database: "memory"})
			return
		}
		status := deps.Health.Status(c.Request.Context())
		if !status.OK {
			respond.JSON(c, http.StatusServiceUnavailable, status)
			return
		}
		respond.OK(c, status)
	})

	if deps.Ingest != nil {
		deps.Ingest.RegisterRoutes(api)
	}
	if deps.Documents != nil {
		deps.Documents.RegisterRoutes(api)
	}
	if deps.Uploads != nil {
		deps.Uploads.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
