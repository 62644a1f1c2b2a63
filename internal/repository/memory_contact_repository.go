package repository

import (
	"context"
	"sync"
	"time"

	"github.com/zapdesk-io/zapdesk/internal/models"
)

// MemoryContactRepository implements ContactRepository with in-memory
// storage for tests and dev mode.
type MemoryContactRepository struct {
	mu       sync.RWMutex
	contacts map[uint]*models.Contact
	tags     map[uint][]models.Tag
	fields   map[uint][]models.ContactCustomField
	nextID   uint
}

// NewMemoryContactRepository creates a new in-memory contact repository.
func NewMemoryContactRepository() *MemoryContactRepository {
	return &MemoryContactRepository{
		contacts: make(map[uint]*models.Contact),
		tags:     make(map[uint][]models.Tag),
		fields:   make(map[uint][]models.ContactCustomField),
		nextID:   1,
	}
}

// GetByID retrieves a contact by ID within the tenant.
func (r *MemoryContactRepository) GetByID(ctx context.Context, tenantID, id uint) (*models.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.contacts[id]
	if !ok || c.TenantID != tenantID {
		return nil, models.ErrContactNotFound
	}
	copied := *c
	return &copied, nil
}

// FindByNumber matches by canonical number or legacy raw number.
func (r *MemoryContactRepository) FindByNumber(ctx context.Context, tenantID uint, canonical, raw string) (*models.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var legacy *models.Contact
	for _, c := range r.contacts {
		if c.TenantID != tenantID {
			continue
		}
		if models.DerefString(c.CanonicalNumber) == canonical && canonical != "" {
			copied := *c
			return &copied, nil
		}
		num := models.DerefString(c.Number)
		if num != "" && (num == canonical || num == raw) {
			if legacy == nil || c.ID < legacy.ID {
				legacy = c
			}
		}
	}
	if legacy != nil {
		copied := *legacy
		return &copied, nil
	}
	return nil, nil
}

// Create stores a new contact.
func (r *MemoryContactRepository) Create(ctx context.Context, contact *models.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	contact.ID = r.nextID
	r.nextID++
	now := time.Now()
	contact.CreateTime = now
	contact.ChangeTime = now
	copied := *contact
	r.contacts[contact.ID] = &copied
	return nil
}

// Update writes back a contact.
func (r *MemoryContactRepository) Update(ctx context.Context, contact *models.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.contacts[contact.ID]
	if !ok || existing.TenantID != contact.TenantID {
		return models.ErrContactNotFound
	}
	contact.ChangeTime = time.Now()
	copied := *contact
	r.contacts[contact.ID] = &copied
	return nil
}

// GetTags returns the tags attached to a contact.
func (r *MemoryContactRepository) GetTags(ctx context.Context, contactID uint) ([]models.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.Tag(nil), r.tags[contactID]...), nil
}

// SetTags replaces a contact's tags (test seeding helper).
func (r *MemoryContactRepository) SetTags(contactID uint, tags []models.Tag) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags[contactID] = append([]models.Tag(nil), tags...)
}

// SetCustomFields upserts a contact's free-form fields by name.
func (r *MemoryContactRepository) SetCustomFields(ctx context.Context, contactID uint, fields []models.ContactCustomField) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing := r.fields[contactID]
	for _, f := range fields {
		replaced := false
		for i := range existing {
			if existing[i].Name == f.Name {
				existing[i].Value = f.Value
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, f)
		}
	}
	r.fields[contactID] = existing
	return nil
}

// CustomFields returns a contact's free-form fields (test helper).
func (r *MemoryContactRepository) CustomFields(contactID uint) []models.ContactCustomField {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.ContactCustomField(nil), r.fields[contactID]...)
}
