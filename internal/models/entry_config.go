package models

import "time"

// ChannelEntryConfig is the stored per (tenant, entry source) routing
// configuration. At most one row exists per pair; nullable fields mean "no
// default".
type ChannelEntryConfig struct {
	ID             uint      `json:"id" db:"id"`
	TenantID       uint      `json:"tenant_id" db:"tenant_id"`
	EntrySource    string    `json:"entry_source" db:"entry_source"`
	QueueID        *uint     `json:"queue_id,omitempty" db:"queue_id"`
	TagID          *uint     `json:"tag_id,omitempty" db:"tag_id"`
	WhatsappID     *uint     `json:"whatsapp_id,omitempty" db:"whatsapp_id"`
	WelcomeMessage *string   `json:"welcome_message,omitempty" db:"welcome_message"`
	CreateTime     time.Time `json:"create_time" db:"create_time"`
	ChangeTime     time.Time `json:"change_time" db:"change_time"`
}

// ResolvedEntryConfig is what GetConfig hands the routing path: either the
// stored row verbatim or a computed default. Computed defaults are never
// persisted.
type ResolvedEntryConfig struct {
	EntrySource    string `json:"entry_source"`
	QueueID        uint   `json:"queue_id"`        // 0 = none
	TagID          uint   `json:"tag_id"`          // 0 = none
	WhatsappID     uint   `json:"whatsapp_id"`     // 0 = none
	WelcomeMessage string `json:"welcome_message"` // "" = none
	Stored         bool   `json:"stored"`
}

// EntryConfigUpdateRequest is the admin write-path payload.
type EntryConfigUpdateRequest struct {
	EntrySource    string `json:"entry_source" binding:"required"`
	QueueID        *uint  `json:"queue_id,omitempty"`
	TagID          *uint  `json:"tag_id,omitempty"`
	WhatsappID     *uint  `json:"whatsapp_id,omitempty"`
	WelcomeMessage string `json:"welcome_message,omitempty"`
}
