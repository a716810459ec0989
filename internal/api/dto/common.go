// Package dto provides request and response types shared by the book review API.
// These types are used by huma to generate OpenAPI documentation and perform validation.
package dto

// PaginationParams defines common pagination query parameters.
// Out-of-range values are clamped by the service rather than rejected.
type PaginationParams struct {
	Page  int `query:"page" default:"1" doc:"Page number, starting at 1"`
	Limit int `query:"limit" default:"5" doc:"Items per page (max 100)"`
}

// SortParams defines common sorting query parameters.
type SortParams struct {
	SortBy    string `query:"sort_by" default:"created_at" doc:"Field to sort by: created_at, title, author, published_year, average_rating"`
	SortOrder string `query:"sort_order" default:"desc" doc:"desc for descending, anything else ascending"`
}

// IDParam is a path parameter for resource IDs.
type IDParam struct {
	ID string `path:"id" doc:"Resource identifier"`
}

// MessageResponse is a simple success message response.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps a message response for huma.
type MessageOutput struct {
	Body MessageResponse
}
