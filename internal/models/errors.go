package models

import "errors"

// Sentinel errors for the routing engine. Services wrap these with
// context; handlers map them to HTTP statuses through ErrorCode.
var (
	ErrInvalidIdentity         = errors.New("identity has no usable number")
	ErrInvalidEntrySource      = errors.New("invalid entry source")
	ErrCrossTenantReference    = errors.New("referenced entity belongs to another tenant")
	ErrLockTimeout             = errors.New("timed out acquiring ticket creation lock")
	ErrForbiddenContactAccess  = errors.New("user may not access this contact's tickets")
	ErrTicketNotFound          = errors.New("ticket not found")
	ErrContactNotFound         = errors.New("contact not found")
)

// ErrorCode maps an error chain to a stable machine-readable code, or ""
// when the error carries no taxonomy entry.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidIdentity):
		return "INVALID_IDENTITY"
	case errors.Is(err, ErrInvalidEntrySource):
		return "INVALID_ENTRY_SOURCE"
	case errors.Is(err, ErrCrossTenantReference):
		return "CROSS_TENANT_REFERENCE"
	case errors.Is(err, ErrLockTimeout):
		return "LOCK_TIMEOUT"
	case errors.Is(err, ErrForbiddenContactAccess):
		return "FORBIDDEN_CONTACT_ACCESS"
	case errors.Is(err, ErrTicketNotFound):
		return "TICKET_NOT_FOUND"
	case errors.Is(err, ErrContactNotFound):
		return "CONTACT_NOT_FOUND"
	}
	return ""
}
