package response

// Pagination describes offset-based paging of a list response.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewPagination computes the page count for a total row count.
func NewPagination(page, limit int, total int64) *Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// APIResponse is the envelope returned by every admin API operation.
// Use OK / OKPage / Fail to construct instances.
type APIResponse[T any] struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       T           `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// OK returns a successful response with data.
func OK[T any](data T) *APIResponse[T] {
	return &APIResponse[T]{Success: true, Data: data}
}

// OKMsg returns a successful response with data and a human-readable message.
func OKMsg[T any](data T, message string) *APIResponse[T] {
	return &APIResponse[T]{Success: true, Data: data, Message: message}
}

// OKPage returns a successful list response with pagination.
func OKPage[T any](data T, p *Pagination) *APIResponse[T] {
	return &APIResponse[T]{Success: true, Data: data, Pagination: p}
}

// Fail returns a failed response carrying a user-facing message.
func Fail(message string) *APIResponse[any] {
	return &APIResponse[any]{Success: false, Message: message}
}
