package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/incident_reporting_api/internal/models"
	"github.com/shenikar/incident_reporting_api/internal/service"
	"github.com/sirupsen/logrus"
)

const currentUserKey = "currentUser"

// BearerAuthMiddleware - middleware для аутентификации по bearer-токену.
// Найденный пользователь кладется в контекст gin.
func BearerAuthMiddleware(users service.UserService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			log.Warn("Bearer token missing from request")
			respondMessage(c, http.StatusUnauthorized, "Missing or malformed Authorization header")
			return
		}

		user, err := users.Resolve(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidToken):
				log.WithError(err).Warn("Invalid bearer token")
				respondMessage(c, http.StatusUnauthorized, "Invalid or expired token")
			case errors.Is(err, service.ErrUserNotFound):
				log.Warn("Bearer token for unknown user")
				respondMessage(c, http.StatusUnauthorized, "User not found")
			default:
				log.WithError(err).Error("Failed to resolve bearer token")
				respondMessage(c, http.StatusInternalServerError, msgInternal)
			}
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// currentUser возвращает пользователя, положенного BearerAuthMiddleware
func currentUser(c *gin.Context) *models.User {
	value, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}
