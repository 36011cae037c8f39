package server

import (
	"github.com/labstack/echo/v4"

	"github.com/FaiyazAwsaf/space-biology-engine/internal/server/middleware"
	"github.com/FaiyazAwsaf/space-biology-engine/internal/server/routes"
)

// RegisterRoutes wires the public API. When authEnabled is set, /ask and
// /documents require a valid bearer token; /health and /domains stay open for
// probes and frontend bootstrap.
func RegisterRoutes(e *echo.Echo, authEnabled bool) {
	e.GET("/health", routes.HealthHandler)
	e.GET("/domains", routes.DomainsHandler)

	if authEnabled {
		e.POST("/ask", routes.AskHandler, middleware.AuthMiddleware)
		e.POST("/documents", routes.IndexDocumentHandler, middleware.AuthMiddleware)
		return
	}
	e.POST("/ask", routes.AskHandler)
	e.POST("/documents", routes.IndexDocumentHandler)
}
