package handler

import "github.com/campusledger/backend/internal/interfaces/http/dto"

// APIResponse is the success envelope as documented in the OpenAPI spec. The
// wire format is produced by dto.Response.
type APIResponse[T any] struct {
	Success bool           `json:"success" example:"true"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse is the failure envelope; error.code is stable, error.message is for people
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// CountData reports how many records a bulk command changed
type CountData struct {
	Count int `json:"count" example:"12"`
}
