// Package service implements the routing engine's business logic on top of
// the repository layer.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/zapdesk-io/zapdesk/internal/models"
	"github.com/zapdesk-io/zapdesk/internal/repository"
)

// IdentityService resolves inbound identities to contacts. Matching is by
// canonical number first, then by the legacy unnormalized number column.
type IdentityService struct {
	contacts repository.ContactRepository
}

// NewIdentityService creates a new identity service.
func NewIdentityService(contacts repository.ContactRepository) *IdentityService {
	return &IdentityService{contacts: contacts}
}

// CanonicalizeNumber normalizes a raw phone string to the digit-only,
// country-code-aware canonical form used as the contact dedup key.
// Brazilian local numbers (10 or 11 digits) get the 55 country code, and
// 8-digit mobile subscribers get the missing leading 9 inserted.
func CanonicalizeNumber(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return "", fmt.Errorf("%q: %w", raw, models.ErrInvalidIdentity)
	}

	if len(digits) == 10 || len(digits) == 11 {
		digits = "55" + digits
	}

	// 55 + DDD + 8-digit subscriber starting with 6-9 is a mobile number
	// missing its ninth digit.
	if strings.HasPrefix(digits, "55") && len(digits) == 12 {
		sub := digits[4:]
		if sub[0] >= '6' && sub[0] <= '9' {
			digits = digits[:4] + "9" + sub
		}
	}

	return digits, nil
}

// ResolveContact finds or creates the tenant's contact for an inbound
// identity. Existing contacts are merged conservatively: only empty fields
// take the new submission's values. Legacy rows matched by raw number get
// their canonical number backfilled.
func (s *IdentityService) ResolveContact(ctx context.Context, tenantID uint, input models.ContactInput) (*models.Contact, error) {
	canonical, err := CanonicalizeNumber(input.RawNumber)
	if err != nil {
		return nil, err
	}

	existing, err := s.contacts.FindByNumber(ctx, tenantID, canonical, input.RawNumber)
	if err != nil {
		return nil, fmt.Errorf("find contact: %w", err)
	}

	if existing == nil {
		contact := &models.Contact{
			TenantID:        tenantID,
			Name:            input.Name,
			Number:          models.NullableString(input.RawNumber),
			CanonicalNumber: &canonical,
			Email:           input.Email,
			CompanyName:     models.NullableString(input.CompanyName),
			IsGroup:         input.IsGroup,
			Active:          true,
		}
		if err := s.contacts.Create(ctx, contact); err != nil {
			// Two first-ever submissions can race the unique
			// (tenant, canonical_number) index; the loser re-reads
			// the winner's row instead of surfacing the insert error.
			winner, findErr := s.contacts.FindByNumber(ctx, tenantID, canonical, input.RawNumber)
			if findErr == nil && winner != nil {
				return winner, nil
			}
			return nil, fmt.Errorf("create contact: %w", err)
		}
		return contact, nil
	}

	changed := false
	if existing.Name == "" && input.Name != "" {
		existing.Name = input.Name
		changed = true
	}
	if existing.Email == "" && input.Email != "" {
		existing.Email = input.Email
		changed = true
	}
	if models.DerefString(existing.CompanyName) == "" && input.CompanyName != "" {
		existing.CompanyName = &input.CompanyName
		changed = true
	}
	if models.DerefString(existing.CanonicalNumber) != canonical {
		existing.CanonicalNumber = &canonical
		changed = true
	}
	if changed {
		if err := s.contacts.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("update contact: %w", err)
		}
	}
	return existing, nil
}
