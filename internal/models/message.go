package models

import "time"

// Message is a persisted inbound or outbound message attached to a ticket.
// Private messages are internal notes: never sent to the channel and
// excluded from the public site-chat read path.
type Message struct {
	ID          uint      `json:"id" db:"id"`
	TicketID    uint      `json:"ticket_id" db:"ticket_id"`
	ContactID   *uint     `json:"contact_id,omitempty" db:"contact_id"`
	Body        string    `json:"body" db:"body"`
	FromMe      bool      `json:"from_me" db:"from_me"`
	RemoteJid   *string   `json:"remote_jid,omitempty" db:"remote_jid"`
	Participant *string   `json:"participant,omitempty" db:"participant"`
	IsPrivate   bool      `json:"is_private" db:"is_private"`
	MediaType   string    `json:"media_type" db:"media_type"`
	Ack         int       `json:"ack" db:"ack"`
	CreateTime  time.Time `json:"create_time" db:"create_time"`
}

// IngestMessageRequest is the façade input for persisting a normalized
// inbound message after routing has resolved the ticket.
type IngestMessageRequest struct {
	TenantID    uint
	TicketID    uint
	ContactID   uint
	Body        string
	FromMe      bool
	RemoteJid   string
	Participant string
	IsPrivate   bool
	MediaType   string
}
