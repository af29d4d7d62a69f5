package models

import (
	"encoding/json"
	"net/http"
	"reflect"
	"time"
)

// APIResponse is the envelope every JSON endpoint returns. A failed response
// carries Error or Message; a successful one never carries Error. Build values
// with OK and Fail so those rules hold.
type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK wraps data in a successful response. A nil slice payload is sent as an
// empty list, never as null.
func OK[T any](data T) APIResponse[T] {
	if v := reflect.ValueOf(&data).Elem(); v.Kind() == reflect.Slice && v.IsNil() {
		v.Set(reflect.MakeSlice(v.Type(), 0, 0))
	}
	return APIResponse[T]{Success: true, Data: &data}
}

// OKMessage is a successful response with no payload.
func OKMessage[T any](message string) APIResponse[T] {
	return APIResponse[T]{Success: true, Message: message}
}

// Fail builds a failed response. A nil err still yields a non-empty Error.
func Fail[T any](err error, message string) APIResponse[T] {
	text := "unknown error"
	if err != nil && err.Error() != "" {
		text = err.Error()
	}
	return APIResponse[T]{Success: false, Error: text, Message: message}
}

// Pagination describes one page of a larger result set. Page is 1-based.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes TotalPages as ceil(total / limit). A non-positive
// limit yields zero pages.
func NewPagination(page, limit, total int) Pagination {
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: TotalPages(total, limit),
	}
}

// TotalPages returns ceil(total / limit), or 0 when limit <= 0.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return pages
}

// Offset is the index of the first item on the page.
func (p Pagination) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Consistent reports whether TotalPages matches Total and Limit.
func (p Pagination) Consistent() bool {
	return p.TotalPages == TotalPages(p.Total, p.Limit)
}

// PaginatedResponse carries one page of items.
type PaginatedResponse[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Paginate builds a page of items.
func Paginate[T any](items []T, page, limit, total int) PaginatedResponse[T] {
	if items == nil {
		items = []T{}
	}
	return PaginatedResponse[T]{Data: items, Pagination: NewPagination(page, limit, total)}
}

func (p PaginatedResponse[T]) MarshalJSON() ([]byte, error) {
	data := p.Data
	if data == nil {
		data = []T{}
	}
	return json.Marshal(struct {
		Data       []T        `json:"data"`
		Pagination Pagination `json:"pagination"`
	}{data, p.Pagination})
}

// APIError is the body of an error response.
type APIError struct {
	StatusCode int       `json:"statusCode"`
	Message    string    `json:"message"`
	Error      string    `json:"error"`
	Timestamp  time.Time `json:"timestamp"`
	Path       string    `json:"path"`
}

// NewAPIError fills Error with the standard reason phrase for status.
func NewAPIError(status int, message, path string, now time.Time) APIError {
	reason := http.StatusText(status)
	if reason == "" {
		reason = "Error"
	}
	return APIError{
		StatusCode: status,
		Message:    message,
		Error:      reason,
		Timestamp:  now.UTC(),
		Path:       path,
	}
}
