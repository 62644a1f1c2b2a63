package models

import "time"

// Contact is a channel-agnostic identity within a tenant. Number holds the
// raw number as first seen; CanonicalNumber holds the normalized digits
// used for dedup. Legacy rows may have a nil canonical until backfilled.
type Contact struct {
	ID              uint      `json:"id" db:"id"`
	TenantID        uint      `json:"tenant_id" db:"tenant_id"`
	Name            string    `json:"name" db:"name"`
	Number          *string   `json:"number,omitempty" db:"number"`
	CanonicalNumber *string   `json:"canonical_number,omitempty" db:"canonical_number"`
	Email           string    `json:"email" db:"email"`
	CompanyName     *string   `json:"company_name,omitempty" db:"company_name"`
	IsGroup         bool      `json:"is_group" db:"is_group"`
	Active          bool      `json:"active" db:"active"`
	Blocked         bool      `json:"blocked" db:"blocked"`
	CreateTime      time.Time `json:"create_time" db:"create_time"`
	ChangeTime      time.Time `json:"change_time" db:"change_time"`

	// Joined fields (populated when needed)
	Tags         []Tag                `json:"tags,omitempty"`
	CustomFields []ContactCustomField `json:"custom_fields,omitempty"`
}

// ContactCustomField is a free-form key/value pair attached to a contact.
type ContactCustomField struct {
	ID        uint   `json:"id" db:"id"`
	ContactID uint   `json:"contact_id" db:"contact_id"`
	Name      string `json:"name" db:"name"`
	Value     string `json:"value" db:"value"`
}

// ContactInput is what the identity resolver receives from any channel.
type ContactInput struct {
	Name        string
	RawNumber   string
	Email       string
	CompanyName string
	IsGroup     bool
}

// NullableString returns nil for the empty string, otherwise a pointer.
func NullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// NullableUint returns nil for zero, otherwise a pointer.
func NullableUint(v uint) *uint {
	if v == 0 {
		return nil
	}
	return &v
}

// DerefString returns the pointed-to string or "".
func DerefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// DerefUint returns the pointed-to value or 0.
func DerefUint(p *uint) uint {
	if p == nil {
		return 0
	}
	return *p
}
