package models

import "time"

// Ticket statuses. The active set is what the find-or-create path matches
// against: a contact never has two active tickets for the same
// (whatsapp connection, entry source) pair.
const (
	TicketStatusOpen    = "open"
	TicketStatusPending = "pending"
	TicketStatusBot     = "bot"
	TicketStatusLGPD    = "lgpd"
	TicketStatusGroup   = "group"
	TicketStatusClosed  = "closed"
)

// Entry sources with per-tenant routing configuration. Tickets may also
// carry channel-native sources (e.g. "whatsapp") that have no config row.
const (
	EntrySourceLead     = "lead"
	EntrySourceReseller = "revendedor"
	EntrySourceSiteChat = "site_chat"
	EntrySourceWhatsapp = "whatsapp"
)

// ActiveTicketStatuses returns the statuses considered open for matching.
func ActiveTicketStatuses() []string {
	return []string{TicketStatusOpen, TicketStatusPending, TicketStatusBot, TicketStatusLGPD}
}

// IsActiveTicketStatus reports whether a status belongs to the active set.
func IsActiveTicketStatus(status string) bool {
	switch status {
	case TicketStatusOpen, TicketStatusPending, TicketStatusBot, TicketStatusLGPD:
		return true
	}
	return false
}

// ValidConfigEntrySource reports whether an entry source may carry a
// channel entry config row.
func ValidConfigEntrySource(source string) bool {
	switch source {
	case EntrySourceLead, EntrySourceReseller, EntrySourceSiteChat:
		return true
	}
	return false
}

// Ticket is the unit of conversation state.
type Ticket struct {
	ID             uint      `json:"id" db:"id"`
	TenantID       uint      `json:"tenant_id" db:"tenant_id"`
	ContactID      uint      `json:"contact_id" db:"contact_id"`
	WhatsappID     uint      `json:"whatsapp_id" db:"whatsapp_id"`
	QueueID        *uint     `json:"queue_id,omitempty" db:"queue_id"`
	UserID         *uint     `json:"user_id,omitempty" db:"user_id"`
	Status         string    `json:"status" db:"status"`
	EntrySource    string    `json:"entry_source" db:"entry_source"`
	UnreadMessages int       `json:"unread_messages" db:"unread_messages"`
	LastMessage    string    `json:"last_message" db:"last_message"`
	Protocol       string    `json:"protocol" db:"protocol"` // uuid for stateless lookup
	IsGroup        bool      `json:"is_group" db:"is_group"`
	CreateTime     time.Time `json:"create_time" db:"create_time"`
	ChangeTime     time.Time `json:"change_time" db:"change_time"`

	// Joined fields (populated when needed)
	Contact  *Contact  `json:"contact,omitempty"`
	Queue    *Queue    `json:"queue,omitempty"`
	Whatsapp *Whatsapp `json:"whatsapp,omitempty"`
}

// IsClosed returns true if the ticket is in the closed status.
func (t *Ticket) IsClosed() bool {
	return t.Status == TicketStatusClosed
}

// IsActive returns true if the ticket status belongs to the active set.
func (t *Ticket) IsActive() bool {
	return IsActiveTicketStatus(t.Status)
}

// FindOrCreateTicketRequest carries everything the finder/creator needs to
// resolve the ticket for an inbound event.
type FindOrCreateTicketRequest struct {
	TenantID    uint
	ContactID   uint
	WhatsappID  uint
	EntrySource string

	// Routing defaults from the channel entry config; zero means none.
	DefaultQueueID uint
	DefaultTagID   uint

	// Explicit assignment wins over defaults.
	QueueID uint
	UserID  uint

	GroupContact             bool
	IsTransfer               bool
	Forward                  bool
	UnreadIncrement          int
	LastMessage              string
	CreateEvenIfClosedExists bool
}

// TicketAccessLog is an append-only audit row written on every granted
// ticket read.
type TicketAccessLog struct {
	ID         uint      `json:"id" db:"id"`
	TicketID   uint      `json:"ticket_id" db:"ticket_id"`
	UserID     uint      `json:"user_id" db:"user_id"`
	Type       string    `json:"type" db:"type"`
	CreateTime time.Time `json:"create_time" db:"create_time"`
}

// AccessLogTypeAccess is the audit type for ticket reads.
const AccessLogTypeAccess = "access"
