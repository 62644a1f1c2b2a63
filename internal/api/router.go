package api

import (
	"database/sql"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zapdesk-io/zapdesk/internal/auth"
	"github.com/zapdesk-io/zapdesk/internal/config"
	"github.com/zapdesk-io/zapdesk/internal/events"
	"github.com/zapdesk-io/zapdesk/internal/middleware"
	"github.com/zapdesk-io/zapdesk/internal/repository"
	"github.com/zapdesk-io/zapdesk/internal/service"
)

// Router owns the gin engine and every handler dependency.
type Router struct {
	engine *gin.Engine
	db     *sql.DB
	hub    *events.Hub

	jwtManager *auth.JWTManager

	users repository.UserRepository

	inbound     *service.InboundService
	tickets     *service.TicketService
	messages    *service.MessageService
	access      *service.AccessService
	entryConfig *service.EntryConfigService
}

// Deps carries everything the router needs.
type Deps struct {
	DB         *sql.DB
	Hub        *events.Hub
	JWTManager *auth.JWTManager

	Users repository.UserRepository

	Inbound     *service.InboundService
	Tickets     *service.TicketService
	Messages    *service.MessageService
	Access      *service.AccessService
	EntryConfig *service.EntryConfigService
}

// NewRouter builds the engine and registers all routes.
func NewRouter(cfg *config.Config, deps Deps) *Router {
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := &Router{
		engine:      gin.New(),
		db:          deps.DB,
		hub:         deps.Hub,
		jwtManager:  deps.JWTManager,
		users:       deps.Users,
		inbound:     deps.Inbound,
		tickets:     deps.Tickets,
		messages:    deps.Messages,
		access:      deps.Access,
		entryConfig: deps.EntryConfig,
	}
	r.engine.Use(gin.Logger(), gin.Recovery())
	r.registerRoutes(cfg)
	return r
}

// Engine exposes the underlying gin engine for the HTTP server and tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) registerRoutes(cfg *config.Config) {
	r.engine.GET("/healthz", r.handleHealthz)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.engine.Group("/api/v1")

	public := v1.Group("/public")
	{
		public.POST("/:tenantID/lead", r.handleLeadSubmit)
		public.POST("/:tenantID/site-chat", r.handleSiteChatSubmit)
		public.GET("/:tenantID/site-chat/:token/messages", r.handleSiteChatMessages)
	}

	webhook := v1.Group("/webhook", middleware.RequireWebhookSecret(cfg.Webhook.SharedSecret))
	{
		webhook.POST("/:tenantID/messages", r.handleWebhookMessage)
	}

	authed := v1.Group("", middleware.RequireAuth(r.jwtManager))
	{
		authed.GET("/tickets/:ref", r.handleGetTicket)
		authed.GET("/tickets/:ref/messages", r.handleTicketMessages)
		authed.GET("/tickets/:ref/access-log", r.handleTicketAccessLog)
		authed.PUT("/tickets/:ref/unread-reset", r.handleResetUnread)

		authed.GET("/channel-entry-config", r.handleGetEntryConfig)
		authed.PUT("/channel-entry-config", middleware.RequireAdmin(), r.handlePutEntryConfig)

		authed.GET("/ws", r.handleWS)
	}
}
