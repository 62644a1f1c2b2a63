package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zapdesk-io/zapdesk/internal/middleware"
	"github.com/zapdesk-io/zapdesk/internal/models"
)

// handleGetEntryConfig resolves the routing defaults for one entry source.
// The response carries a stored flag so admins can tell an explicit config
// from a computed fallback.
func (r *Router) handleGetEntryConfig(c *gin.Context) {
	claims := middleware.GetClaims(c)
	entrySource := c.Query("entry_source")
	resolved, err := r.entryConfig.GetConfig(c.Request.Context(), claims.TenantID, entrySource)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resolved)
}

// handlePutEntryConfig stores an explicit entry config. Admin only.
func (r *Router) handlePutEntryConfig(c *gin.Context) {
	claims := middleware.GetClaims(c)
	var req models.EntryConfigUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	cfg, err := r.entryConfig.CreateOrUpdate(c.Request.Context(), claims.TenantID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// handleHealthz reports liveness plus database reachability.
func (r *Router) handleHealthz(c *gin.Context) {
	status := "ok"
	code := http.StatusOK
	if r.db != nil {
		if err := r.db.PingContext(c.Request.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	c.JSON(code, gin.H{"status": status})
}
