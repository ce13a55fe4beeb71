package handlers

import (
	"net/http"
	"strconv"

	"user_service/internal/models"

	"github.com/gin-gonic/gin"
)

// UpdateUserRequest carries the optional fields of PUT /api/users/{id}.
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty" binding:"omitempty,email,max=254" example:"new@gmail.com"`
	Name     *string `json:"name,omitempty" binding:"omitempty,min=1,max=100" example:"new name"`
	Password *string `json:"password,omitempty" binding:"omitempty,pwd"`
}

// userIDParam parses :id and writes a 400 when it is not a positive integer.
func userIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidUserID})
		return 0, false
	}
	return id, true
}

// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, users"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/users [get]
// @Security     BearerAuth
func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.services.Users.List(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListUsers, "users_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(users),
		"users": users,
	})
}

// @Summary      Create user
// @Description  Same pipeline as /auth/register; the response carries a token for the new account.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      RegisterRequest  true  "User payload"
// @Success      201   {object}  models.AuthResult
// @Failure      400   {object}  map[string]interface{}
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/users [post]
// @Security     BearerAuth
func (h *Handler) createUser(c *gin.Context) {
	var input RegisterRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}
	h.registerUser(c, input)
}

// @Summary      Get user
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  models.PublicUser
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/users/{id} [get]
// @Security     BearerAuth
func (h *Handler) getUser(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	u, err := h.services.Users.Get(c.Request.Context(), id)
	if err != nil {
		code, msg := userStatus(err, errGetUser)
		h.logAndJSONError(c, code, msg, "users_get_failed", err, "user_id", id)
		return
	}
	c.JSON(http.StatusOK, u)
}

// @Summary      Update user
// @Description  Only the fields present in the body change. A new password is re-hashed.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "User ID"
// @Param        body  body      UpdateUserRequest  true  "Fields to change"
// @Success      200   {object}  models.PublicUser
// @Failure      400   {object}  map[string]interface{}
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/users/{id} [put]
// @Security     BearerAuth
func (h *Handler) updateUser(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	var input UpdateUserRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	u, err := h.services.Users.Update(c.Request.Context(), id, models.UserPatch{
		Email:    input.Email,
		Name:     input.Name,
		Password: input.Password,
	})
	if err != nil {
		code, msg := userStatus(err, errUpdateUser)
		h.logAndJSONError(c, code, msg, "users_update_failed", err, "user_id", id)
		return
	}
	c.JSON(http.StatusOK, u)
}

// @Summary      Delete user
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/users/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	if err := h.services.Users.Delete(c.Request.Context(), id); err != nil {
		code, msg := userStatus(err, errDeleteUser)
		h.logAndJSONError(c, code, msg, "users_delete_failed", err, "user_id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusDeleted})
}
