package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/zapdesk-io/zapdesk/internal/models"
)

func parseTenantID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("tenantID"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid tenant id", Code: "INVALID_REQUEST"})
		return 0, false
	}
	return uint(id), true
}

// handleLeadSubmit routes a public lead or reseller form submission.
func (r *Router) handleLeadSubmit(c *gin.Context) {
	tenantID, ok := parseTenantID(c)
	if !ok {
		return
	}
	var req models.LeadSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	result, err := r.inbound.SubmitLead(c.Request.Context(), tenantID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// handleSiteChatSubmit routes a public site-chat submission and returns
// the polling token.
func (r *Router) handleSiteChatSubmit(c *gin.Context) {
	tenantID, ok := parseTenantID(c)
	if !ok {
		return
	}
	var req models.SiteChatSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	result, err := r.inbound.SubmitSiteChat(c.Request.Context(), tenantID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// handleSiteChatMessages is the unauthenticated widget poll: the protocol
// uuid is the real credential, and private notes never leave this path.
func (r *Router) handleSiteChatMessages(c *gin.Context) {
	tenantID, ok := parseTenantID(c)
	if !ok {
		return
	}
	ticket, err := r.tickets.GetByProtocol(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	if ticket.TenantID != tenantID {
		respondError(c, models.ErrTicketNotFound)
		return
	}
	msgs, err := r.messages.ListTicketMessages(c.Request.Context(), ticket.ID, false, 0)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket_status": ticket.Status, "messages": msgs})
}

// handleWebhookMessage ingests a channel-native inbound message event.
func (r *Router) handleWebhookMessage(c *gin.Context) {
	tenantID, ok := parseTenantID(c)
	if !ok {
		return
	}
	var req models.WebhookMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	result, err := r.inbound.HandleWebhookMessage(c.Request.Context(), tenantID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
