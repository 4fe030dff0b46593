package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"docsight/internal/domain"
	"docsight/internal/middleware"
)

// APIResponse is the standard envelope for JSON API error responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error
// codes. The response message is the error text itself: batch aborts must
// tell the caller what actually failed.
func MapDomainError(err error) (status int, code string) {
	switch {
	case errors.Is(err, domain.ErrInvalidProvider):
		return http.StatusBadRequest, "INVALID_PROVIDER"
	case errors.Is(err, domain.ErrNoFiles):
		return http.StatusBadRequest, "NO_FILES"
	case errors.Is(err, domain.ErrRasterizationFailed):
		return http.StatusInternalServerError, "RASTERIZATION_FAILED"
	case errors.Is(err, domain.ErrExtractionFailed):
		return http.StatusInternalServerError, "EXTRACTION_FAILED"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get(middleware.RequestIDKey)
		log.Printf("handler: [%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, err.Error())
}
