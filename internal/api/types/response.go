// internal/api/types/response.go
package types

import "splitflow/internal/domain"

// PaginatedResponse defines a generic structure for paginated API responses.
// T represents the type of data contained in the 'Data' slice.
type PaginatedResponse[T any] struct {
	Data       []T   `json:"data"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	TotalCount int64 `json:"total_count"`
}

// Page returns the window [offset, offset+limit) of items. A limit of 0 means no limit.
func Page[T any](items []T, limit, offset int) PaginatedResponse[T] {
	total := len(items)
	start := min(offset, total)
	end := total
	if limit > 0 {
		end = min(start+limit, total)
	}
	data := items[start:end]
	if data == nil {
		data = []T{}
	}
	return PaginatedResponse[T]{
		Data:       data,
		Limit:      limit,
		Offset:     offset,
		TotalCount: int64(total),
	}
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MutationResponse is returned by income, spend and transfer requests.
type MutationResponse struct {
	Balance     domain.Balance      `json:"balance"`
	Transaction *domain.Transaction `json:"transaction"`
}
