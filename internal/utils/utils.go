package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

func GetPaginationParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	return NormalizePage(page, pageSize)
}

func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	return page, pageSize
}

// Meta describes one page of a listing.
type Meta struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalPage   int   `json:"total_page"`
}

func NewMeta(total int64, page, pageSize int) Meta {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Meta{
		Total:       total,
		CurrentPage: page,
		PerPage:     pageSize,
		TotalPage:   totalPages,
	}
}

func Offset(page, pageSize int) int {
	return (page - 1) * pageSize
}
