package template

import (
	"net/http"
	"strconv"

	"file-lifecycle-manager/internal/errors"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func departmentID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest("Invalid department id", err))
		return 0, false
	}
	return id, true
}

func (h *Handler) List(c *gin.Context) {
	deptID, ok := departmentID(c)
	if !ok {
		return
	}

	templates, err := h.service.List(c.Request.Context(), deptID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": templates})
}

func (h *Handler) Create(c *gin.Context) {
	deptID, ok := departmentID(c)
	if !ok {
		return
	}

	var form CreateTemplateRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}
	form.DepartmentID = deptID

	tpl, err := h.service.Create(c.Request.Context(), c.GetUint64("user_id"), form)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, tpl)
}

// Resolve shows which levels a new file of ?file_type= would get.
func (h *Handler) Resolve(c *gin.Context) {
	deptID, ok := departmentID(c)
	if !ok {
		return
	}

	levels, err := h.service.Resolve(c.Request.Context(), deptID, c.Query("file_type"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"levels": levels})
}
