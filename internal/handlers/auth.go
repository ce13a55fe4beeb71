package handlers

import (
	"errors"
	"net/http"

	"user_service/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterRequest is the signup payload for /auth/register and POST /api/users.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=254" example:"magenta@gmail.com"`
	Name     string `json:"name" binding:"required,max=100" example:"magenta"`
	Password string `json:"password" binding:"required,pwd" example:"s3cr3t-pass"`
}

// LoginRequest is the payload for /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"magenta@gmail.com"`
	Password string `json:"password" binding:"required" example:"s3cr3t-pass"`
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a 400 JSON on failure.
// Returns false if the request was already handled (aborted), true otherwise.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if h.log != nil {
			h.log.Infow("bad_request_body", "path", c.FullPath(), "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   errInvalidBody,
			"details": validationDetails(err),
		})
		return false
	}
	return true
}

// registerUser runs the registration pipeline and writes the response for both signup routes.
func (h *Handler) registerUser(c *gin.Context, in RegisterRequest) {
	res, err := h.services.RegisterUser(c.Request.Context(), service.RegisterInput{
		Email:    in.Email,
		Name:     in.Name,
		Password: in.Password,
	})
	if err != nil {
		code, msg := registrationStatus(err)
		h.logAndJSONError(c, code, msg, "auth_register_failed", err, "email", in.Email)
		return
	}
	if h.log != nil {
		h.log.Infow("auth_registered", "user_id", res.User.ID, "email", res.User.Email)
	}
	c.JSON(http.StatusCreated, res)
}

// @Summary      Register
// @Description  Creates an account, stores a bcrypt hash of the password and returns a signed token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      RegisterRequest  true  "Registration payload"
// @Success      201   {object}  models.AuthResult
// @Failure      400   {object}  map[string]interface{}
// @Failure      409   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/register [post]
func (h *Handler) register(c *gin.Context) {
	var input RegisterRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}
	h.registerUser(c, input)
}

// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      LoginRequest  true  "Credentials"
// @Success      200   {object}  models.AuthResult
// @Failure      400   {object}  map[string]interface{}
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/login [post]
func (h *Handler) login(c *gin.Context) {
	var input LoginRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	res, err := h.services.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.logAndJSONError(c, http.StatusUnauthorized, errInvalidCredentials, "auth_login_failed", err, "email", input.Email)
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errLogin, "auth_login_failed", err, "email", input.Email)
		return
	}

	c.JSON(http.StatusOK, res)
}
