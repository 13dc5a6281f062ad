package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/NSBM-SE-Projects/atelier/pkg/errors"
)

// apiErrorBody mirrors the flat error envelope returned by the storefront API:
// {"error": "CODE", "message": "..."}.
type apiErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an appropriate AppError. If the body matches the storefront error
// envelope, the code and message are preserved; otherwise a generic error
// carrying the status code is returned.
//
// The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return fmt.Errorf("status %d (failed to read body: %w)", resp.StatusCode, err)
	}

	var body apiErrorBody
	if json.Unmarshal(bodyBytes, &body) == nil && body.Message != "" {
		return mapAPIError(resp.StatusCode, body.Error, body.Message)
	}

	return fmt.Errorf("request failed with status %d", resp.StatusCode)
}

// mapAPIError translates an API status code and error envelope into an
// AppError that preserves the failure semantics.
func mapAPIError(status int, code, message string) error {
	switch status {
	case http.StatusNotFound:
		return &apperrors.AppError{Code: code, Message: message, Status: status, Err: apperrors.ErrNotFound}
	case http.StatusBadRequest:
		return apperrors.InvalidInput(message)
	case http.StatusUnauthorized:
		return apperrors.Unauthorized(message)
	case http.StatusForbidden:
		return apperrors.Forbidden(message)
	case http.StatusConflict:
		return apperrors.Conflict(message)
	case http.StatusUnprocessableEntity:
		return &apperrors.AppError{Code: code, Message: message, Status: status, Err: apperrors.ErrInsufficientStock}
	default:
		return &apperrors.AppError{Code: code, Message: message, Status: status}
	}
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
