package constants

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Standard Response Field Keys
const (
	ResponseFieldError   = "error"
	ResponseFieldCode    = "code"
	ResponseFieldDetails = "details"
)

// PaginationParams holds parsed page/limit/search query values.
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
	Search string
}

// ParsePaginationParams parses page, limit and search from the query string
func ParsePaginationParams(c *gin.Context) PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery(QueryParamPage, DefaultPage))
	limit, _ := strconv.Atoi(c.DefaultQuery(QueryParamLimit, DefaultLimit))

	if page < MinPage {
		page = MinPage
	}
	if limit < MinLimit {
		limit = MinLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
		Search: c.DefaultQuery(QueryParamSearch, DefaultSearch),
	}
}

// BuildErrorResponse builds the error body returned by every failing endpoint
func BuildErrorResponse(message, code string, details any) map[string]any {
	response := map[string]any{
		ResponseFieldError: message,
	}

	if code != "" {
		response[ResponseFieldCode] = code
	}
	if details != nil {
		response[ResponseFieldDetails] = details
	}

	return response
}
