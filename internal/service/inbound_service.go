package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/zapdesk-io/zapdesk/internal/events"
	"github.com/zapdesk-io/zapdesk/internal/models"
	"github.com/zapdesk-io/zapdesk/internal/repository"
)

// InboundService orchestrates the full routing pipeline for inbound
// events: identity resolution, entry config lookup, ticket find-or-create
// and message ingestion.
type InboundService struct {
	identity    *IdentityService
	entryConfig *EntryConfigService
	ticketSvc   *TicketService
	messageSvc  *MessageService
	welcome     *WelcomeService
	contacts    repository.ContactRepository
	whatsapps   repository.WhatsappRepository
	bus         *events.Bus
}

// NewInboundService creates a new inbound orchestrator.
func NewInboundService(identity *IdentityService, entryConfig *EntryConfigService, ticketSvc *TicketService, messageSvc *MessageService, welcome *WelcomeService, contacts repository.ContactRepository, whatsapps repository.WhatsappRepository, bus *events.Bus) *InboundService {
	return &InboundService{
		identity:    identity,
		entryConfig: entryConfig,
		ticketSvc:   ticketSvc,
		messageSvc:  messageSvc,
		welcome:     welcome,
		contacts:    contacts,
		whatsapps:   whatsapps,
		bus:         bus,
	}
}

// SubmitLead routes a public lead-form submission. Reseller submissions
// route under the revendedor entry source.
func (s *InboundService) SubmitLead(ctx context.Context, tenantID uint, req *models.LeadSubmitRequest) (*models.InboundResult, error) {
	entrySource := models.EntrySourceLead
	if req.Reseller {
		entrySource = models.EntrySourceReseller
	}
	result, err := s.route(ctx, tenantID, entrySource, models.ContactInput{
		Name:        req.Name,
		RawNumber:   req.Number,
		Email:       req.Email,
		CompanyName: req.CompanyName,
	}, req.Message)
	if err != nil {
		return nil, err
	}
	// Record where this contact came in from, for the agent's benefit.
	fields := []models.ContactCustomField{{Name: "origem", Value: entrySource}}
	if err := s.contacts.SetCustomFields(ctx, result.ContactID, fields); err != nil {
		return nil, fmt.Errorf("set custom fields: %w", err)
	}
	return result, nil
}

// SubmitSiteChat routes a public site-chat submission. The returned token
// is the ticket protocol uuid the widget uses to poll for replies.
func (s *InboundService) SubmitSiteChat(ctx context.Context, tenantID uint, req *models.SiteChatSubmitRequest) (*models.InboundResult, error) {
	return s.route(ctx, tenantID, models.EntrySourceSiteChat, models.ContactInput{
		Name:      req.Name,
		RawNumber: req.Number,
		Email:     req.Email,
	}, req.Message)
}

// HandleWebhookMessage routes a channel-native inbound message. The phone
// portion of the JID is extracted before identity resolution; group JIDs
// produce group tickets keyed by the group address.
func (s *InboundService) HandleWebhookMessage(ctx context.Context, tenantID uint, req *models.WebhookMessageRequest) (*models.InboundResult, error) {
	// The connection id comes from the caller and must belong to the
	// tenant before anything is written.
	whatsappID := req.WhatsappID
	if whatsappID == 0 {
		conn, err := s.whatsapps.GetDefault(ctx, tenantID)
		if err != nil {
			return nil, fmt.Errorf("default connection: %w", err)
		}
		if conn == nil {
			return nil, fmt.Errorf("tenant %d has no channel connection", tenantID)
		}
		whatsappID = conn.ID
	} else {
		conn, err := s.whatsapps.GetByID(ctx, tenantID, whatsappID)
		if err != nil {
			return nil, fmt.Errorf("connection: %w", err)
		}
		if conn == nil {
			return nil, fmt.Errorf("connection %d: %w", whatsappID, models.ErrCrossTenantReference)
		}
	}

	number, isGroup := ExtractJidNumber(req.RemoteJid)

	name := req.PushName
	if name == "" {
		name = number
	}
	contact, err := s.identity.ResolveContact(ctx, tenantID, models.ContactInput{
		Name:      name,
		RawNumber: number,
		IsGroup:   isGroup,
	})
	if err != nil {
		return nil, err
	}

	unread := 1
	if req.FromMe {
		unread = 0
	}
	ticket, created, err := s.ticketSvc.FindOrCreateTicket(ctx, &models.FindOrCreateTicketRequest{
		TenantID:        tenantID,
		ContactID:       contact.ID,
		WhatsappID:      whatsappID,
		EntrySource:     models.EntrySourceWhatsapp,
		GroupContact:    isGroup,
		UnreadIncrement: unread,
		LastMessage:     req.Body,
	})
	if err != nil {
		return nil, err
	}
	if created {
		s.publishTicketCreated(tenantID, ticket)
	}

	if _, err := s.messageSvc.Ingest(ctx, &models.IngestMessageRequest{
		TenantID:    tenantID,
		TicketID:    ticket.ID,
		ContactID:   contact.ID,
		Body:        req.Body,
		FromMe:      req.FromMe,
		RemoteJid:   req.RemoteJid,
		Participant: req.Participant,
		MediaType:   req.MediaType,
	}); err != nil {
		return nil, err
	}

	return &models.InboundResult{ContactID: contact.ID, TicketID: ticket.ID, Token: ticket.Protocol}, nil
}

// route runs the shared submit pipeline for the configurable entry sources.
func (s *InboundService) route(ctx context.Context, tenantID uint, entrySource string, input models.ContactInput, body string) (*models.InboundResult, error) {
	contact, err := s.identity.ResolveContact(ctx, tenantID, input)
	if err != nil {
		return nil, err
	}

	cfg, err := s.entryConfig.GetConfig(ctx, tenantID, entrySource)
	if err != nil {
		return nil, err
	}

	whatsappID := cfg.WhatsappID
	if whatsappID == 0 {
		conn, err := s.whatsapps.GetDefault(ctx, tenantID)
		if err != nil {
			return nil, fmt.Errorf("default connection: %w", err)
		}
		if conn == nil {
			return nil, fmt.Errorf("tenant %d has no channel connection", tenantID)
		}
		whatsappID = conn.ID
	}

	ticket, created, err := s.ticketSvc.FindOrCreateTicket(ctx, &models.FindOrCreateTicketRequest{
		TenantID:        tenantID,
		ContactID:       contact.ID,
		WhatsappID:      whatsappID,
		EntrySource:     entrySource,
		DefaultQueueID:  cfg.QueueID,
		DefaultTagID:    cfg.TagID,
		UnreadIncrement: 1,
		LastMessage:     body,
	})
	if err != nil {
		return nil, err
	}

	if body != "" {
		if _, err := s.messageSvc.Ingest(ctx, &models.IngestMessageRequest{
			TenantID:  tenantID,
			TicketID:  ticket.ID,
			ContactID: contact.ID,
			Body:      body,
		}); err != nil {
			return nil, err
		}
	}

	if created {
		s.welcome.Dispatch(contact, whatsappID, cfg.WelcomeMessage)
		s.publishTicketCreated(tenantID, ticket)
	}

	return &models.InboundResult{ContactID: contact.ID, TicketID: ticket.ID, Token: ticket.Protocol}, nil
}

func (s *InboundService) publishTicketCreated(tenantID uint, ticket *models.Ticket) {
	if s.bus != nil {
		s.bus.Publish(events.Event{Type: events.TypeTicketCreated, TenantID: tenantID, Payload: ticket})
	}
}

// ExtractJidNumber pulls the dialable portion out of a channel JID and
// reports whether the JID addresses a group thread.
func ExtractJidNumber(jid string) (number string, isGroup bool) {
	number = jid
	if i := strings.Index(jid, "@"); i >= 0 {
		number = jid[:i]
		isGroup = strings.HasSuffix(jid, "@g.us")
	}
	// Some adapters append a device suffix after a colon.
	if i := strings.Index(number, ":"); i >= 0 {
		number = number[:i]
	}
	return number, isGroup
}
