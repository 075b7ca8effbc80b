package v1

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shenikar/incident_reporting_api/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	userService         service.UserService
	incidentService     service.IncidentService
	notificationService service.NotificationService
	logger              *logrus.Logger
	validate            *validator.Validate
}

func NewHandler(userService service.UserService, incidentService service.IncidentService, notificationService service.NotificationService, logger *logrus.Logger) *Handler {
	validate := validator.New()
	// В сообщениях об ошибках используем имена полей из json тегов
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handler{
		userService:         userService,
		incidentService:     incidentService,
		notificationService: notificationService,
		logger:              logger,
		validate:            validate,
	}
}

// bindJSON разбирает и проверяет тело запроса, при ошибке сам отвечает 400
func (h *Handler) bindJSON(c *gin.Context, log *logrus.Entry, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		respondMessage(c, http.StatusBadRequest, msgInvalidBody)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		log.WithError(err).Warn("Validation failed")
		respondMessage(c, http.StatusBadRequest, bindingErrorMessage(err))
		return false
	}
	return true
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
