// Package api wires the HTTP surface: public submit endpoints, the
// channel webhook, authenticated ticket reads and the admin config API.
package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zapdesk-io/zapdesk/internal/models"
)

// ErrorResponse is the uniform error body. Code is stable and machine
// readable; Error is human readable and never contains entity fields.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// respondError maps the error taxonomy to HTTP statuses. Unclassified
// errors are logged and surfaced as opaque 500s.
func respondError(c *gin.Context, err error) {
	code := models.ErrorCode(err)
	status := http.StatusInternalServerError

	switch code {
	case "INVALID_IDENTITY", "INVALID_ENTRY_SOURCE", "CROSS_TENANT_REFERENCE":
		status = http.StatusBadRequest
	case "FORBIDDEN_CONTACT_ACCESS":
		status = http.StatusForbidden
	case "TICKET_NOT_FOUND", "CONTACT_NOT_FOUND":
		status = http.StatusNotFound
	case "LOCK_TIMEOUT":
		// Retryable: no partial state is left behind on a lock timeout.
		status = http.StatusServiceUnavailable
	}

	body := ErrorResponse{Code: code}
	if status == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
		body.Error = "internal error"
	} else {
		body.Error = err.Error()
	}
	if code == "FORBIDDEN_CONTACT_ACCESS" {
		// Permission denials must not leak ticket details.
		body.Error = "forbidden"
	}
	c.JSON(status, body)
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
}
