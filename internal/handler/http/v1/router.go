package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API.
// authLimiters навешиваются только на register и login.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup, authLimiters ...gin.HandlerFunc) {
	requireAuth := BearerAuthMiddleware(h.userService, h.logger)

	// Маршруты аутентификации
	auth := api.Group("/auth")
	{
		limited := auth.Group("", authLimiters...)
		limited.POST("/register", h.register)
		limited.POST("/login", h.login)
		auth.GET("/me", requireAuth, h.me)
	}

	// Маршруты для работы с инцидентами
	incidents := api.Group("/incidents")
	{
		incidents.GET("", h.listIncidents)
		incidents.POST("", requireAuth, h.createIncident)
		incidents.GET("/:id", h.getIncident)
		incidents.PUT("/:id", requireAuth, h.updateIncident)
		incidents.PUT("/:id/status", requireAuth, h.updateIncidentStatus)
	}

	api.GET("/notifications", requireAuth, h.listNotifications)

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}
