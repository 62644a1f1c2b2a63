package service

import (
	"context"
	"fmt"

	"github.com/zapdesk-io/zapdesk/internal/events"
	"github.com/zapdesk-io/zapdesk/internal/metrics"
	"github.com/zapdesk-io/zapdesk/internal/models"
	"github.com/zapdesk-io/zapdesk/internal/repository"
)

// MessageService persists normalized inbound and outbound messages after
// routing has resolved the ticket.
type MessageService struct {
	messages repository.MessageRepository
	tickets  repository.TicketRepository
	bus      *events.Bus
}

// NewMessageService creates a new message service.
func NewMessageService(messages repository.MessageRepository, tickets repository.TicketRepository, bus *events.Bus) *MessageService {
	return &MessageService{messages: messages, tickets: tickets, bus: bus}
}

// Ingest persists a message on its ticket, refreshes the ticket preview and
// publishes a message.created event for real-time fan-out. Unread counting
// is the ticket finder's job, not this one's.
func (s *MessageService) Ingest(ctx context.Context, req *models.IngestMessageRequest) (*models.Message, error) {
	message := &models.Message{
		TicketID:    req.TicketID,
		ContactID:   models.NullableUint(req.ContactID),
		Body:        req.Body,
		FromMe:      req.FromMe,
		RemoteJid:   models.NullableString(req.RemoteJid),
		Participant: models.NullableString(req.Participant),
		IsPrivate:   req.IsPrivate,
		MediaType:   req.MediaType,
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	ticket, err := s.tickets.GetByID(ctx, req.TenantID, req.TicketID)
	if err != nil {
		return nil, fmt.Errorf("load ticket: %w", err)
	}
	if req.Body != "" && !req.IsPrivate {
		ticket.LastMessage = req.Body
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return nil, fmt.Errorf("refresh ticket: %w", err)
		}
	}

	metrics.MessagesIngested.Inc()
	if s.bus != nil {
		s.bus.Publish(events.Event{Type: events.TypeMessageCreated, TenantID: req.TenantID, Payload: message})
	}
	return message, nil
}

// ListTicketMessages returns a ticket's messages in receipt order. Private
// notes are excluded unless includePrivate is set; the public site-chat
// read path always excludes them.
func (s *MessageService) ListTicketMessages(ctx context.Context, ticketID uint, includePrivate bool, limit int) ([]models.Message, error) {
	return s.messages.ListByTicket(ctx, ticketID, includePrivate, limit)
}
