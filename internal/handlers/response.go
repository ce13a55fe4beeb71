package handlers

import (
	"errors"
	"net/http"

	"user_service/internal/credentials"
	"user_service/internal/repository"
	"user_service/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK      = "ok"
	statusDeleted = "deleted"

	errInvalidBody        = "invalid request body"
	errInvalidUserID      = "invalid user id"
	errInvalidPassword    = "invalid password"
	errUserNotFound       = "user not found"
	errEmailTaken         = "email already registered"
	errInvalidCredentials = "invalid credentials"
	errRegister           = "failed to register user"
	errLogin              = "failed to log in"
	errListUsers          = "failed to load users"
	errGetUser            = "failed to load user"
	errUpdateUser         = "failed to update user"
	errDeleteUser         = "failed to delete user"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err, "request_id", c.GetString(requestIDKey)}, kv...)
		if httpCode >= http.StatusInternalServerError {
			h.log.Errorw(logKey, fields...)
		} else {
			h.log.Infow(logKey, fields...)
		}
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// registrationStatus maps a registration failure to its status code and public message.
func registrationStatus(err error) (int, string) {
	kind, ok := service.KindOf(err)
	if !ok {
		return http.StatusInternalServerError, errRegister
	}
	switch kind {
	case service.KindConflict:
		return http.StatusConflict, errEmailTaken
	case service.KindValidation:
		return http.StatusBadRequest, errInvalidBody
	default:
		return http.StatusInternalServerError, errRegister
	}
}

// userStatus maps user CRUD failures to status codes.
func userStatus(err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, errUserNotFound
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, errEmailTaken
	case errors.Is(err, service.ErrEmptyPatch):
		return http.StatusBadRequest, service.ErrEmptyPatch.Error()
	case errors.Is(err, credentials.ErrEmptyPassword), errors.Is(err, credentials.ErrPasswordTooLong):
		return http.StatusBadRequest, errInvalidPassword
	default:
		return http.StatusInternalServerError, fallback
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}
