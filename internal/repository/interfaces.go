// Package repository provides data access for the routing engine. SQL
// implementations run against PostgreSQL or MySQL through the placeholder
// compat layer; memory implementations back tests and dev mode.
package repository

import (
	"context"
	"time"

	"github.com/zapdesk-io/zapdesk/internal/models"
)

// ContactRepository persists contacts. Find methods return (nil, nil) when
// no row matches; GetByID returns models.ErrContactNotFound.
type ContactRepository interface {
	GetByID(ctx context.Context, tenantID, id uint) (*models.Contact, error)
	FindByNumber(ctx context.Context, tenantID uint, canonical, raw string) (*models.Contact, error)
	Create(ctx context.Context, contact *models.Contact) error
	Update(ctx context.Context, contact *models.Contact) error
	GetTags(ctx context.Context, contactID uint) ([]models.Tag, error)
	// SetCustomFields upserts the named fields; keys not named keep
	// their values.
	SetCustomFields(ctx context.Context, contactID uint, fields []models.ContactCustomField) error
}

// TicketRepository persists tickets, their tag joins and the access log.
type TicketRepository interface {
	GetByID(ctx context.Context, tenantID, id uint) (*models.Ticket, error)
	GetByProtocol(ctx context.Context, protocol string) (*models.Ticket, error)
	// FindLatest returns the newest ticket for the (contact, connection,
	// entry source) key whose status is in statuses; nil statuses matches
	// any status. Returns (nil, nil) when none exists.
	FindLatest(ctx context.Context, tenantID, contactID, whatsappID uint, entrySource string, statuses []string) (*models.Ticket, error)
	Create(ctx context.Context, ticket *models.Ticket) error
	Update(ctx context.Context, ticket *models.Ticket) error
	AttachTag(ctx context.Context, ticketID, tagID uint) error
	AppendAccessLog(ctx context.Context, ticketID, userID uint, logType string) error
	ListAccessLog(ctx context.Context, ticketID uint) ([]models.TicketAccessLog, error)
	CloseStalePending(ctx context.Context, cutoff time.Time) (int64, error)
}

// MessageRepository persists ticket messages.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	ListByTicket(ctx context.Context, ticketID uint, includePrivate bool, limit int) ([]models.Message, error)
}

// TagRepository persists tags.
type TagRepository interface {
	GetByID(ctx context.Context, tenantID, id uint) (*models.Tag, error)
	FindOrCreateByName(ctx context.Context, tenantID uint, name, color string, kanban int) (*models.Tag, error)
}

// QueueRepository reads queues.
type QueueRepository interface {
	GetByID(ctx context.Context, tenantID, id uint) (*models.Queue, error)
	FirstByTenant(ctx context.Context, tenantID uint) (*models.Queue, error)
}

// WhatsappRepository reads channel connections.
type WhatsappRepository interface {
	GetByID(ctx context.Context, tenantID, id uint) (*models.Whatsapp, error)
	GetDefault(ctx context.Context, tenantID uint) (*models.Whatsapp, error)
}

// EntryConfigRepository persists channel entry configs.
type EntryConfigRepository interface {
	Get(ctx context.Context, tenantID uint, entrySource string) (*models.ChannelEntryConfig, error)
	Upsert(ctx context.Context, cfg *models.ChannelEntryConfig) error
}

// UserRepository reads users with their allowed contact tags joined.
type UserRepository interface {
	GetByID(ctx context.Context, tenantID, id uint) (*models.User, error)
}
