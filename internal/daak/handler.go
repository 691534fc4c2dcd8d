package daak

import (
	"net/http"
	"strconv"

	"file-lifecycle-manager/internal/domain"
	"file-lifecycle-manager/internal/errors"
	"file-lifecycle-manager/internal/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type LinkForm struct {
	FileID uint64 `json:"file_id" binding:"required"`
}

type ListQuery struct {
	Direction string `form:"direction" binding:"omitempty,oneof=INWARD OUTWARD"`
}

func (h *Handler) Create(c *gin.Context) {
	var form CreateDaakRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	d, err := h.service.Create(c.Request.Context(), c.GetUint64("user_id"), form)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, d)
}

func (h *Handler) ListForDepartment(c *gin.Context) {
	deptID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest("Invalid department id", err))
		return
	}

	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	page, pageSize := utils.GetPaginationParams(c)
	result, err := h.service.ListForDepartment(c.Request.Context(), deptID, c.GetUint64("user_id"), domain.DaakDirection(query.Direction), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) Link(c *gin.Context) {
	daakID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest("Invalid daak id", err))
		return
	}

	var form LinkForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	d, err := h.service.Link(c.Request.Context(), LinkRequest{
		DaakID:   daakID,
		FileID:   form.FileID,
		UserID:   c.GetUint64("user_id"),
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, d)
}
