package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// NewRouter builds the gin engine with every route. gatherer backs /metrics;
// nil means the default Prometheus registry.
func NewRouter(h *Handler, gatherer prometheus.Gatherer) (*gin.Engine, error) {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	static, err := StaticFS()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.StaticFS("/static", static)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Parent-on-Duty Scheduler API",
			"version": Version,
		})
	})

	r.GET("/admin", h.AdminInterface)
	r.POST("/admin/login", h.Login)

	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.PUT("/keys/:id", h.UpdateKeyLimit)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)
	}

	api := r.Group("/api")
	api.Use(h.APIKeyMiddleware())
	{
		api.POST("/fill", h.Fill)
		api.POST("/fill/json", h.FillJSON)
		api.POST("/validate", h.ValidateInput)
		api.GET("/usage", h.GetMyUsage)
	}
	return r, nil
}
