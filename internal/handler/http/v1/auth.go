package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/sos_assistance_system/internal/config"
	"github.com/sirupsen/logrus"
)

// AdminSecretMiddleware - middleware для доступа к диспетчерской панели.
// Клиент панели шлет общий секрет заголовком admin-secret на каждый
// запрос; серверных сессий и токенов у прототипа нет.
func AdminSecretMiddleware(cfg *config.Config, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := c.GetHeader("admin-secret")

		if secret == "" {
			log.Warn("Admin secret missing from request")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Unauthorized"})
			return
		}

		if secret != cfg.AdminSecret {
			log.Warn("Invalid admin secret provided")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Unauthorized"})
			return
		}

		c.Next()
	}
}
