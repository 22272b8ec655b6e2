package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"policyscan/internal/common"
)

// APIError holds error details in a failure response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the envelope for failed requests.
type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, ErrorResponse{
		Success: false,
		Error:   APIError{Code: code, Message: msg},
	})
}

// MapPipelineError translates pipeline errors to HTTP status and error codes.
// Input-class failures are client errors; everything else is a server failure.
func MapPipelineError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, common.ErrNoText):
		return http.StatusUnprocessableEntity, "NO_MEANINGFUL_TEXT",
			"could not extract meaningful text from the document; the file may be corrupted or image-only"
	case errors.Is(err, common.ErrInvalidInput):
		return http.StatusUnprocessableEntity, "INVALID_DOCUMENT",
			"failed to read the uploaded document"
	case errors.Is(err, common.ErrGeneration):
		return http.StatusInternalServerError, "EXTRACTION_FAILED",
			"structured extraction failed"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR",
			"an unexpected error occurred"
	}
}
