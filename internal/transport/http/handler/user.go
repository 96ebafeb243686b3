package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"faqdesk/internal/app"
	"faqdesk/internal/transport/http/response"
)

type UserHandler struct {
	authService *app.AuthService
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin editor"`
}

func NewUserHandler(authService *app.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.authService.ListUsers()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list users failed")
		return
	}
	response.OK(c, users)
}

func (h *UserHandler) UpdateRole(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	user, err := h.authService.UpdateUserRole(id, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "update role failed")
		}
		return
	}
	response.OK(c, user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	requesterID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	id, ok := parseUserID(c)
	if !ok {
		return
	}

	if err := h.authService.DeleteUser(requesterID, id); err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete user failed")
		}
		return
	}
	response.OK(c, gin.H{"deleted_user_id": id})
}

func parseUserID(c *gin.Context) (uint, bool) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id64 == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid user id")
		return 0, false
	}
	return uint(id64), true
}
