package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// @Summary List my notifications
// @Description Notifications sent (or attempted) to the current user, newest first.
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum number of records" default(20)
// @Success 200 {array} NotificationResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /notifications [get]
func (h *Handler) listNotifications(c *gin.Context) {
	log := h.logger.WithField("method", "listNotifications")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	notifications, err := h.notificationService.ListNotifications(c.Request.Context(), currentUser(c).ID, limit)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToNotificationResponses(notifications))
}
