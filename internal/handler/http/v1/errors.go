package v1

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shenikar/incident_reporting_api/internal/service"
	"github.com/sirupsen/logrus"
)

const (
	msgInvalidBody       = "Invalid request body"
	msgInvalidIncidentID = "Invalid incident ID"
	msgForbidden         = "You are not allowed to perform this action"
	msgInternal          = "Internal server error"
)

// respondError переводит ошибку сервиса в HTTP статус и тело {"message": ...}
func respondError(c *gin.Context, log *logrus.Entry, err error) {
	status, message := classify(err)
	if status >= http.StatusInternalServerError {
		log.WithError(err).Error("Request failed")
	} else {
		log.WithError(err).Warn("Request rejected")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Message: message})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Message: message})
}

func classify(err error) (int, string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, validationErrorMessage(verr)
	case errors.Is(err, service.ErrDuplicateEmail):
		return http.StatusBadRequest, "Email already exists"
	case errors.Is(err, service.ErrDuplicateUsername):
		return http.StatusBadRequest, "Username already exists"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid or expired token"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, msgForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "Incident not found"
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, "Incident status was changed by another request, reload and retry"
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

func validationErrorMessage(verr *service.ValidationError) string {
	parts := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return strings.Join(parts, "; ")
}

// bindingErrorMessage собирает понятное сообщение из ошибок validator
func bindingErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return msgInvalidBody
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fieldErrorMessage(fe))
	}
	return strings.Join(parts, "; ")
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
