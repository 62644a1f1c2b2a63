package models

import "time"

// User profiles. Admins bypass the contact-tag permission algebra.
const (
	ProfileAdmin = "admin"
	ProfileUser  = "user"
)

// User is an agent account within a tenant.
type User struct {
	ID         uint      `json:"id" db:"id"`
	TenantID   uint      `json:"tenant_id" db:"tenant_id"`
	Name       string    `json:"name" db:"name"`
	Email      string    `json:"email" db:"email"`
	Profile    string    `json:"profile" db:"profile"`
	CreateTime time.Time `json:"create_time" db:"create_time"`
	ChangeTime time.Time `json:"change_time" db:"change_time"`

	// AllowedContactTags is the set of tags granting this agent visibility
	// over contacts (joined from user_contact_tags).
	AllowedContactTags []Tag `json:"allowed_contact_tags,omitempty"`
}

// IsAdmin returns true for admin-profile users.
func (u *User) IsAdmin() bool {
	return u.Profile == ProfileAdmin
}
