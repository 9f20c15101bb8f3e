package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Прием тревог - открытый маршрут, репортер не аутентифицируется
	api.POST("/sos_alert", h.postSOSAlert)

	// Вход диспетчера
	api.POST("/login", h.login)

	// Лента инцидентов для панели, закрыта общим секретом
	incidents := api.Group("/incidents", AdminSecretMiddleware(h.cfg, h.logger))
	{
		incidents.GET("", h.listIncidents)
	}

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}
