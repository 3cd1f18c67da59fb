package http

import (
	"tictacgo/internal/app"
	"tictacgo/internal/http/handlers"
	"tictacgo/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(r *gin.Engine, a *app.App, version string) {
	r.Use(middleware.Observe())
	statusHandler := handlers.NewStatusHandler(a, version)

	r.GET("/healthz", statusHandler.Liveness)
	r.GET("/readyz", statusHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/state", statusHandler.State)
}
