package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/conectahub/intranet-api/internal/constants"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Page     int
	PageSize int
	Offset   int
}

// PaginationResponse represents the pagination metadata in API responses
type PaginationResponse struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// GetPaginationParams extracts and validates pagination parameters from the request
func GetPaginationParams(c *gin.Context) PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(constants.DefaultPageSize)))
	return NewPaginationParams(page, pageSize)
}

// NewPaginationParams clamps page and page size to the accepted range.
func NewPaginationParams(page, pageSize int) PaginationParams {
	if page < 1 {
		page = 1
	}
	if pageSize < constants.MinPageSize || pageSize > constants.MaxPageSize {
		pageSize = constants.DefaultPageSize
	}
	return PaginationParams{
		Page:     page,
		PageSize: pageSize,
		Offset:   (page - 1) * pageSize,
	}
}

// Paginate returns the requested window of items and its metadata. A page
// past the end yields an empty, non-nil slice.
func Paginate[T any](items []T, params PaginationParams) ([]T, PaginationResponse) {
	total := len(items)
	meta := PaginationResponse{
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalCount: total,
		TotalPages: (total + params.PageSize - 1) / params.PageSize,
	}

	if params.Offset >= total {
		return []T{}, meta
	}
	end := params.Offset + params.PageSize
	if end > total {
		end = total
	}
	return items[params.Offset:end], meta
}
