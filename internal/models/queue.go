package models

import "time"

// Queue represents a ticket queue within a tenant.
type Queue struct {
	ID         uint      `json:"id" db:"id"`
	TenantID   uint      `json:"tenant_id" db:"tenant_id"`
	Name       string    `json:"name" db:"name"`
	Color      string    `json:"color" db:"color"`
	CreateTime time.Time `json:"create_time" db:"create_time"`
	ChangeTime time.Time `json:"change_time" db:"change_time"`
}

// Whatsapp represents a channel connection (a WhatsApp session slot or
// equivalent). The engine never touches the transport itself; sending goes
// through the ConnectionGateway interface.
type Whatsapp struct {
	ID         uint      `json:"id" db:"id"`
	TenantID   uint      `json:"tenant_id" db:"tenant_id"`
	Name       string    `json:"name" db:"name"`
	Status     string    `json:"status" db:"status"`
	IsDefault  bool      `json:"is_default" db:"is_default"`
	CreateTime time.Time `json:"create_time" db:"create_time"`
	ChangeTime time.Time `json:"change_time" db:"change_time"`
}
