package v1

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/incident_reporting_api/internal/models"
)

// поля формы, под которыми клиенты присылают вложения
var attachmentFields = []string{"files", "files[]"}

// @Summary Get a list of incidents
// @Description Get a paginated list of incidents, newest first.
// @Tags Incidents
// @Produce json
// @Param status query string false "Exact status filter" Enums(pending, in_progress, resolved, rejected)
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Number of items per page" default(10)
// @Success 200 {object} IncidentListResponse
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	result, err := h.incidentService.ListIncidents(c.Request.Context(), c.Query("status"), page, perPage)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, PageToListResponse(result))
}

// @Summary Get incident by ID
// @Description Get a single incident with its attachments and status history.
// @Tags Incidents
// @Produce json
// @Param id path string true "Incident ID"
// @Success 200 {object} IncidentDetailResponse
// @Failure 400 {object} ErrorResponse "Invalid incident ID"
// @Failure 404 {object} ErrorResponse "Incident not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents/{id} [get]
func (h *Handler) getIncident(c *gin.Context) {
	id, ok := incidentID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "getIncident").WithField("id", id)

	detail, err := h.incidentService.GetIncident(c.Request.Context(), id)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, DetailToResponse(detail))
}

// @Summary Create a new incident
// @Description Report an incident. Attachments go under the "files" (or "files[]") form field.
// @Tags Incidents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param type formData string false "Incident type"
// @Param latitude formData number true "Latitude"
// @Param longitude formData number true "Longitude"
// @Param files formData file false "Attachments (png, jpg, jpeg, gif, mp4, mov)"
// @Success 201 {object} CreateIncidentResponse
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents [post]
func (h *Handler) createIncident(c *gin.Context) {
	log := h.logger.WithField("method", "createIncident")

	files, err := formFiles(c)
	if err != nil {
		log.WithError(err).Warn("Failed to parse multipart form")
		respondMessage(c, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	input := models.NewIncidentInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Type:        c.PostForm("type"),
		Latitude:    c.PostForm("latitude"),
		Longitude:   c.PostForm("longitude"),
		Attachments: FileHeadersToUploads(files),
	}

	incident, err := h.incidentService.CreateIncident(c.Request.Context(), currentUser(c), input)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, CreateIncidentResponse{
		Message: "Incident created successfully",
		ID:      incident.ID,
	})
}

// @Summary Update an existing incident
// @Description Partially update an incident. Only its reporter may do this.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Incident ID"
// @Param incident body UpdateIncidentRequest true "Fields to change"
// @Success 200 {object} IncidentMessageResponse
// @Failure 400 {object} ErrorResponse "Invalid incident ID or request body"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Not the reporter"
// @Failure 404 {object} ErrorResponse "Incident not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents/{id} [put]
func (h *Handler) updateIncident(c *gin.Context) {
	id, ok := incidentID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "updateIncident").WithField("id", id)

	var input UpdateIncidentRequest
	if !h.bindJSON(c, log, &input) {
		return
	}

	incident, err := h.incidentService.UpdateIncident(c.Request.Context(), currentUser(c), id, UpdateDTOToPatch(input))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, IncidentMessageResponse{
		Message:  "Incident updated successfully",
		Incident: ModelToIncidentResponse(incident),
	})
}

// @Summary Change incident status
// @Description Move an incident to another status and append a history record. Admin only.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Incident ID"
// @Param status body UpdateStatusRequest true "New status and optional note"
// @Success 200 {object} IncidentMessageResponse
// @Failure 400 {object} ErrorResponse "Unknown status or status unchanged"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Not an admin"
// @Failure 404 {object} ErrorResponse "Incident not found"
// @Failure 409 {object} ErrorResponse "Status changed concurrently"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents/{id}/status [put]
func (h *Handler) updateIncidentStatus(c *gin.Context) {
	id, ok := incidentID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "updateIncidentStatus").WithField("id", id)

	// права проверяются до разбора тела: не-админ получает 403 при любом теле
	if user := currentUser(c); user == nil || !user.IsAdmin {
		log.Warn("Status change attempted by non-admin")
		respondMessage(c, http.StatusForbidden, msgForbidden)
		return
	}

	var input UpdateStatusRequest
	if !h.bindJSON(c, log, &input) {
		return
	}

	incident, err := h.incidentService.TransitionStatus(c.Request.Context(), currentUser(c), id, input.Status, input.Note)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, IncidentMessageResponse{
		Message:  "Status updated successfully",
		Incident: ModelToIncidentResponse(incident),
	})
}

func incidentID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondMessage(c, http.StatusBadRequest, msgInvalidIncidentID)
		return uuid.Nil, false
	}
	return id, true
}

// formFiles собирает вложения из multipart формы; для других типов тела вложений нет
func formFiles(c *gin.Context) ([]*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}

	var files []*multipart.FileHeader
	for _, field := range attachmentFields {
		files = append(files, form.File[field]...)
	}
	return files, nil
}
