package service

import (
	"context"
	"fmt"
	"log"

	"github.com/zapdesk-io/zapdesk/internal/metrics"
	"github.com/zapdesk-io/zapdesk/internal/models"
	"github.com/zapdesk-io/zapdesk/internal/repository"
)

// AccessService decides whether an agent may read a ticket. Admins and the
// ticket owner always pass; everyone else goes through the permission tag
// algebra: at least one shared personal tag, and, when the agent carries
// complementary tags, at least one of those shared too.
type AccessService struct {
	contacts repository.ContactRepository
	tickets  repository.TicketRepository
}

// NewAccessService creates a new access service.
func NewAccessService(contacts repository.ContactRepository, tickets repository.TicketRepository) *AccessService {
	return &AccessService{contacts: contacts, tickets: tickets}
}

// Authorize returns nil when user may read ticket, appending an audit row
// on every grant. A denial returns models.ErrForbiddenContactAccess and
// leaks nothing about the ticket.
func (s *AccessService) Authorize(ctx context.Context, user *models.User, ticket *models.Ticket) error {
	if user.IsAdmin() || models.DerefUint(ticket.UserID) == user.ID {
		s.logAccess(ctx, ticket.ID, user.ID)
		return nil
	}

	cats := models.CategorizeTagsByName(user.AllowedContactTags)
	contactTags, err := s.contacts.GetTags(ctx, ticket.ContactID)
	if err != nil {
		return fmt.Errorf("contact tags: %w", err)
	}
	contactTagIDs := make(map[uint]bool, len(contactTags))
	for _, t := range contactTags {
		contactTagIDs[t.ID] = true
	}

	hasPersonal := false
	for _, t := range cats.Personal {
		if contactTagIDs[t.ID] {
			hasPersonal = true
			break
		}
	}
	hasComplementary := len(cats.Complementary) == 0
	for _, t := range cats.Complementary {
		if contactTagIDs[t.ID] {
			hasComplementary = true
			break
		}
	}

	if !hasPersonal || !hasComplementary {
		metrics.AccessDenied.Inc()
		return fmt.Errorf("user %d ticket %d: %w", user.ID, ticket.ID, models.ErrForbiddenContactAccess)
	}

	s.logAccess(ctx, ticket.ID, user.ID)
	return nil
}

// ListAccessLog returns a ticket's audit trail, oldest first.
func (s *AccessService) ListAccessLog(ctx context.Context, ticketID uint) ([]models.TicketAccessLog, error) {
	return s.tickets.ListAccessLog(ctx, ticketID)
}

func (s *AccessService) logAccess(ctx context.Context, ticketID, userID uint) {
	if err := s.tickets.AppendAccessLog(ctx, ticketID, userID, models.AccessLogTypeAccess); err != nil {
		log.Printf("access log append failed (ticket=%d user=%d): %v", ticketID, userID, err)
	}
}
