// Package api contains the request and response types of the HTTP API.
package api

type Error struct {
	Code        int32        `json:"code"` // should be a repeat of the http response status code
	Message     string       `json:"message"`
	FieldErrors []FieldError `json:"fieldErrors,omitempty"`
}

type FieldError struct {
	FieldName string   `json:"fieldName"`
	Errors    []string `json:"errors"`
}

type EmptyRequest struct{}

type EmptyResponse struct{}

type ListResponse[T any] struct {
	Count int `json:"count"`
	Items []T `json:"items"`
}

func NewListResponse[T, M any](items []M, fn func(item M) T) *ListResponse[T] {
	result := &ListResponse[T]{
		Count: len(items),
		Items: make([]T, 0, len(items)),
	}

	for _, item := range items {
		result.Items = append(result.Items, fn(item))
	}

	return result
}
