package paginate

import (
	"encoding/json"
	"strconv"
)

const (
	DefaultLimit  = 50
	DefaultOffset = 0
)

// Metadata contains paged info for any listed responses
// helps LLMs to understand status of pagination
type Metadata struct {
	Total      int  `json:"total"`
	Offset     int  `json:"offset"`
	Limit      int  `json:"limit"`
	HasMore    bool `json:"hasMore"`
	NextOffset int  `json:"nextOffset"`
}

// Response wraps a list data with paged metadata
type Response struct {
	Data       []any    `json:"data"`
	Pagination Metadata `json:"pagination"`
}

// ParseParams extracts limit and offset from request arguments.
func ParseParams(args any) (int, int) {
	limit := DefaultLimit
	offset := DefaultOffset

	m, ok := args.(map[string]any)
	if !ok {
		return limit, offset
	}

	if limitStr, ok := m["limit"].(string); ok {
		if limitInt, err := strconv.Atoi(limitStr); err == nil && limitInt > 0 {
			limit = limitInt
		}
	}
	if offsetStr, ok := m["offset"].(string); ok {
		if offsetInt, err := strconv.Atoi(offsetStr); err == nil && offsetInt >= 0 {
			offset = offsetInt
		}
	}
	return limit, offset
}

// Array returns the paged subset for list data.
func Array(arr []any, offset, limit int) []any {
	if limit <= 0 || offset >= len(arr) {
		return []any{}
	}

	end := offset + limit
	if end > len(arr) {
		end = len(arr)
	}
	return arr[offset:end]
}

// Wrap wraps paginated data and metadata into json.
func Wrap(data []any, total, offset, limit int) ([]byte, error) {
	nextOffset := offset + limit
	if nextOffset >= total {
		nextOffset = -1
	}

	hasMore := nextOffset != -1

	return json.Marshal(Response{
		Data: data,
		Pagination: Metadata{
			Total:      total,
			Offset:     offset,
			Limit:      limit,
			HasMore:    hasMore,
			NextOffset: nextOffset,
		},
	})
}

// DefaultPageSize is the page size of client side paged views.
const DefaultPageSize = 10

// Pages is the pager state of a list that is fully fetched and paged locally.
// From is inclusive, To exclusive, both zero based.
type Pages struct {
	PageSize   int `json:"pageSize"`
	PageNumber int `json:"pageNumber"`
	MaxPages   int `json:"maxPages"`
	Total      int `json:"total"`
	From       int `json:"from"`
	To         int `json:"to"`
}

// Paginate computes the pager state for page pageNumber (1 based). Page
// numbers out of range are clamped to the first or last page.
func Paginate(total, pageSize, pageNumber int) Pages {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	maxPages := total / pageSize
	if total%pageSize > 0 {
		maxPages++
	}
	if pageNumber > maxPages {
		pageNumber = maxPages
	}
	if pageNumber < 1 {
		pageNumber = 1
	}
	from := (pageNumber - 1) * pageSize
	to := pageNumber * pageSize
	if to > total {
		to = total
	}
	if from > to {
		from = to
	}
	return Pages{
		PageSize:   pageSize,
		PageNumber: pageNumber,
		MaxPages:   maxPages,
		Total:      total,
		From:       from,
		To:         to,
	}
}
