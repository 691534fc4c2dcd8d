package file

import (
	"net/http"
	"strconv"

	"file-lifecycle-manager/internal/domain"
	"file-lifecycle-manager/internal/errors"
	"file-lifecycle-manager/internal/utils"
	"file-lifecycle-manager/internal/workflow"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type ActionForm struct {
	Action  string `json:"action" binding:"required"`
	Remarks string `json:"remarks" binding:"max=2000"`
}

type ListQuery struct {
	State string `form:"state" binding:"omitempty,oneof=DRAFT IN_REVIEW RETURNED CABINET APPROVED REJECTED ARCHIVED"`
}

func paramID(c *gin.Context, what string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest("Invalid "+what+" id", err))
		return 0, false
	}
	return id, true
}

func (h *Handler) Create(c *gin.Context) {
	var form CreateFileRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	result, err := h.service.Create(c.Request.Context(), c.GetUint64("user_id"), form)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *Handler) Show(c *gin.Context) {
	fileID, ok := paramID(c, "file")
	if !ok {
		return
	}

	f, err := h.service.Get(c.Request.Context(), fileID, c.GetUint64("user_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, f)
}

func (h *Handler) ListForDepartment(c *gin.Context) {
	deptID, ok := paramID(c, "department")
	if !ok {
		return
	}

	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	page, pageSize := utils.GetPaginationParams(c)
	result, err := h.service.ListForDepartment(c.Request.Context(), deptID, c.GetUint64("user_id"), domain.FileState(query.State), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExecuteAction applies one workflow action and returns the updated file.
func (h *Handler) ExecuteAction(c *gin.Context) {
	fileID, ok := paramID(c, "file")
	if !ok {
		return
	}

	var form ActionForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	f, err := h.service.ExecuteAction(c.Request.Context(), workflow.ActionRequest{
		FileID:   fileID,
		UserID:   c.GetUint64("user_id"),
		Action:   domain.Action(form.Action),
		Remarks:  form.Remarks,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, f)
}

func (h *Handler) AllowedActions(c *gin.Context) {
	fileID, ok := paramID(c, "file")
	if !ok {
		return
	}

	actions, err := h.service.AllowedActions(c.Request.Context(), fileID, c.GetUint64("user_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"actions": actions})
}

func (h *Handler) Levels(c *gin.Context) {
	fileID, ok := paramID(c, "file")
	if !ok {
		return
	}

	levels, err := h.service.Levels(c.Request.Context(), fileID, c.GetUint64("user_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": levels})
}

func (h *Handler) AuditTrail(c *gin.Context) {
	fileID, ok := paramID(c, "file")
	if !ok {
		return
	}

	page, pageSize := utils.GetPaginationParams(c)
	result, err := h.service.AuditTrail(c.Request.Context(), fileID, c.GetUint64("user_id"), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) Participants(c *gin.Context) {
	fileID, ok := paramID(c, "file")
	if !ok {
		return
	}

	participants, err := h.service.Participants(c.Request.Context(), fileID, c.GetUint64("user_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": participants})
}
