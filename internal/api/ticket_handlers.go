package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/zapdesk-io/zapdesk/internal/middleware"
	"github.com/zapdesk-io/zapdesk/internal/models"
)

// resolveTicket loads the ticket behind the :ref path segment, which is
// either a numeric id or a protocol uuid, and runs the access check for
// the session user. The loaded user is returned for reuse.
func (r *Router) resolveTicket(c *gin.Context) (*models.Ticket, *models.User, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
		return nil, nil, false
	}

	ctx := c.Request.Context()
	ref := c.Param("ref")

	var ticket *models.Ticket
	var err error
	if id, perr := strconv.ParseUint(ref, 10, 32); perr == nil {
		ticket, err = r.tickets.GetByID(ctx, claims.TenantID, uint(id))
	} else {
		ticket, err = r.tickets.GetByProtocol(ctx, ref)
		if err == nil && ticket.TenantID != claims.TenantID {
			err = models.ErrTicketNotFound
		}
	}
	if err != nil {
		respondError(c, err)
		return nil, nil, false
	}

	user, err := r.users.GetByID(ctx, claims.TenantID, claims.UserID)
	if err != nil {
		respondError(c, err)
		return nil, nil, false
	}
	if err := r.access.Authorize(ctx, user, ticket); err != nil {
		respondError(c, err)
		return nil, nil, false
	}
	return ticket, user, true
}

// handleGetTicket serves both id and protocol-uuid lookups.
func (r *Router) handleGetTicket(c *gin.Context) {
	ticket, _, ok := r.resolveTicket(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// handleTicketMessages returns a ticket's messages, private notes included.
func (r *Router) handleTicketMessages(c *gin.Context) {
	ticket, _, ok := r.resolveTicket(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	msgs, err := r.messages.ListTicketMessages(c.Request.Context(), ticket.ID, true, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// handleTicketAccessLog returns the audit trail for a ticket.
func (r *Router) handleTicketAccessLog(c *gin.Context) {
	ticket, _, ok := r.resolveTicket(c)
	if !ok {
		return
	}
	entries, err := r.access.ListAccessLog(c.Request.Context(), ticket.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// handleResetUnread clears the unread counter when an agent opens the
// ticket.
func (r *Router) handleResetUnread(c *gin.Context) {
	ticket, _, ok := r.resolveTicket(c)
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)
	if err := r.tickets.ResetUnread(c.Request.Context(), claims.TenantID, ticket.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleWS upgrades an authenticated agent to the realtime event stream.
func (r *Router) handleWS(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.Status(http.StatusUnauthorized)
		return
	}
	r.hub.ServeWS(c, claims.TenantID, claims.UserID)
}
