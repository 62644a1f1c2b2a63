package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/zapdesk-io/zapdesk/internal/lock"
	"github.com/zapdesk-io/zapdesk/internal/metrics"
	"github.com/zapdesk-io/zapdesk/internal/models"
	"github.com/zapdesk-io/zapdesk/internal/repository"
)

// TicketService finds or creates the ticket for an inbound event. The whole
// read-then-create sequence runs under the keyed creation mutex, which is
// what guarantees that no two active tickets ever share the same
// (contact, connection, entry source) triple.
type TicketService struct {
	tickets repository.TicketRepository
	locker  lock.TicketLocker
}

// NewTicketService creates a new ticket service.
func NewTicketService(tickets repository.TicketRepository, locker lock.TicketLocker) *TicketService {
	return &TicketService{tickets: tickets, locker: locker}
}

// FindOrCreateTicket resolves the ticket for an inbound event. The second
// return value reports whether a new ticket was created, which callers use
// to decide welcome-message dispatch.
func (s *TicketService) FindOrCreateTicket(ctx context.Context, req *models.FindOrCreateTicketRequest) (*models.Ticket, bool, error) {
	key := lock.TicketKey(req.TenantID, req.ContactID, req.WhatsappID, req.EntrySource)
	release, err := s.locker.Acquire(ctx, key)
	if err != nil {
		metrics.LockTimeouts.Inc()
		return nil, false, fmt.Errorf("acquire %s: %w", key, err)
	}
	defer release()

	// Forwarding targets a pre-existing thread regardless of status.
	var statuses []string
	if !req.Forward {
		statuses = models.ActiveTicketStatuses()
	}

	existing, err := s.tickets.FindLatest(ctx, req.TenantID, req.ContactID, req.WhatsappID, req.EntrySource, statuses)
	if err != nil {
		return nil, false, fmt.Errorf("find ticket: %w", err)
	}
	if existing != nil {
		if err := s.touch(ctx, existing, req); err != nil {
			return nil, false, err
		}
		metrics.TicketsReused.WithLabelValues(req.EntrySource).Inc()
		return existing, false, nil
	}

	// An explicit reuse request reopens the newest closed ticket for the
	// key instead of opening a fresh thread.
	if req.CreateEvenIfClosedExists {
		closed, err := s.tickets.FindLatest(ctx, req.TenantID, req.ContactID, req.WhatsappID, req.EntrySource, []string{models.TicketStatusClosed})
		if err != nil {
			return nil, false, fmt.Errorf("find closed ticket: %w", err)
		}
		if closed != nil {
			closed.Status = models.TicketStatusPending
			if err := s.touch(ctx, closed, req); err != nil {
				return nil, false, err
			}
			metrics.TicketsReused.WithLabelValues(req.EntrySource).Inc()
			return closed, false, nil
		}
	}

	ticket, err := s.create(ctx, req)
	if err != nil {
		return nil, false, err
	}
	metrics.TicketsCreated.WithLabelValues(req.EntrySource).Inc()
	return ticket, true, nil
}

func (s *TicketService) touch(ctx context.Context, ticket *models.Ticket, req *models.FindOrCreateTicketRequest) error {
	ticket.UnreadMessages += req.UnreadIncrement
	if req.LastMessage != "" {
		ticket.LastMessage = req.LastMessage
	}
	if req.IsTransfer {
		if req.QueueID != 0 {
			ticket.QueueID = models.NullableUint(req.QueueID)
		}
		ticket.UserID = models.NullableUint(req.UserID)
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	return nil
}

func (s *TicketService) create(ctx context.Context, req *models.FindOrCreateTicketRequest) (*models.Ticket, error) {
	status := models.TicketStatusPending
	if req.GroupContact {
		status = models.TicketStatusGroup
	}

	// An explicit queue or agent assignment wins over the entry defaults.
	var queueID *uint
	switch {
	case req.QueueID != 0:
		queueID = models.NullableUint(req.QueueID)
	case req.UserID == 0 && req.DefaultQueueID != 0:
		queueID = models.NullableUint(req.DefaultQueueID)
	}

	ticket := &models.Ticket{
		TenantID:       req.TenantID,
		ContactID:      req.ContactID,
		WhatsappID:     req.WhatsappID,
		QueueID:        queueID,
		UserID:         models.NullableUint(req.UserID),
		Status:         status,
		EntrySource:    req.EntrySource,
		UnreadMessages: req.UnreadIncrement,
		LastMessage:    req.LastMessage,
		Protocol:       uuid.NewString(),
		IsGroup:        req.GroupContact,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	if req.DefaultTagID != 0 {
		if err := s.tickets.AttachTag(ctx, ticket.ID, req.DefaultTagID); err != nil {
			return nil, fmt.Errorf("attach default tag: %w", err)
		}
	}
	return ticket, nil
}

// GetByID returns the ticket without any access evaluation. Handlers must
// run AccessService.Authorize before returning it to an agent.
func (s *TicketService) GetByID(ctx context.Context, tenantID, id uint) (*models.Ticket, error) {
	return s.tickets.GetByID(ctx, tenantID, id)
}

// GetByProtocol returns the ticket behind an external uuid. The protocol is
// unguessable, so this lookup is not tenant-scoped.
func (s *TicketService) GetByProtocol(ctx context.Context, protocol string) (*models.Ticket, error) {
	return s.tickets.GetByProtocol(ctx, protocol)
}

// ResetUnread clears the unread counter after an agent opens the ticket.
func (s *TicketService) ResetUnread(ctx context.Context, tenantID, id uint) error {
	ticket, err := s.tickets.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if ticket.UnreadMessages == 0 {
		return nil
	}
	ticket.UnreadMessages = 0
	return s.tickets.Update(ctx, ticket)
}
