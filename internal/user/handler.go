package user

import (
	"net/http"
	"strconv"

	"file-lifecycle-manager/auth"
	"file-lifecycle-manager/internal/errors"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for users
type Handler struct {
	service Service
}

// NewHandler creates a new user handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// FormLogin represents login form data
type FormLogin struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type FormAssignRole struct {
	UserID uint64 `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var form FormLogin
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	user, err := h.service.Login(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		c.Error(err)
		return
	}

	accessToken, err := auth.GenerateAccessToken(user.ID, user.TokenVersion)
	if err != nil {
		c.Error(errors.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": accessToken,
		"user":         user.ToSafeUser(),
	})
}

// GetProfile returns the current user with the roles held per department.
func (h *Handler) GetProfile(c *gin.Context) {
	userID := c.GetUint64("user_id")

	user, err := h.service.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	roles, err := h.service.ListRoles(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  user.ToSafeUser(),
		"roles": roles,
	})
}

func (h *Handler) MyRole(c *gin.Context) {
	deptID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest("Invalid department id", err))
		return
	}

	role, ok, err := h.service.RoleOf(c.Request.Context(), c.GetUint64("user_id"), deptID)
	if err != nil {
		c.Error(err)
		return
	}
	if !ok {
		c.Error(errors.NotFound("You hold no role in this department", nil))
		return
	}

	c.JSON(http.StatusOK, gin.H{"department_id": deptID, "role": role})
}

func (h *Handler) AssignRole(c *gin.Context) {
	deptID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest("Invalid department id", err))
		return
	}

	var form FormAssignRole
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	row, err := h.service.AssignRole(c.Request.Context(), c.GetUint64("user_id"), deptID, form.UserID, form.Role)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, row)
}
