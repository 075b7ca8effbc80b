package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary Register a new user
// @Description Create a regular (non-admin) account and send a welcome email.
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Registration request"
// @Success 201 {object} RegisterResponse
// @Failure 400 {object} ErrorResponse "Validation error, email or username already exists"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (h *Handler) register(c *gin.Context) {
	log := h.logger.WithField("method", "register")

	var input RegisterRequest
	if !h.bindJSON(c, log, &input) {
		return
	}

	user, err := h.userService.Register(c.Request.Context(), RegisterDTOToInput(input))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, RegisterResponse{
		Message: "User created successfully",
		User:    ModelToUserResponse(user),
	})
}

// @Summary Log in
// @Description Exchange email and password for a bearer token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login request"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (h *Handler) login(c *gin.Context) {
	log := h.logger.WithField("method", "login")

	var input LoginRequest
	if !h.bindJSON(c, log, &input) {
		return
	}

	cred, err := h.userService.Authenticate(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, TokenResponse{
		AccessToken: cred.AccessToken,
		TokenType:   cred.TokenType,
		ExpiresAt:   cred.ExpiresAt,
	})
}

// @Summary Current user
// @Description Return the account behind the bearer token.
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /auth/me [get]
func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, ModelToUserResponse(currentUser(c)))
}
