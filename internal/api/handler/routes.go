package handler

import "github.com/labstack/echo/v4"

// RegisterRoutes はAPIのルートを登録する
func RegisterRoutes(e *echo.Echo, events *EventHandler, health *HealthHandler) {
	e.GET("/health", health.Check)

	api := e.Group("/api")
	api.GET("/events", events.List)
	api.POST("/events", events.Create)
	api.GET("/events/:id", events.GetByID)
	api.PUT("/events/:id/status", events.UpdateStatus)
}
