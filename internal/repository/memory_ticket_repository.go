package repository

import (
	"context"
	"sync"
	"time"

	"github.com/zapdesk-io/zapdesk/internal/models"
)

// MemoryTicketRepository implements TicketRepository with in-memory
// storage for tests and dev mode.
type MemoryTicketRepository struct {
	mu         sync.RWMutex
	tickets    map[uint]*models.Ticket
	ticketTags map[uint]map[uint]bool
	accessLog  []models.TicketAccessLog
	nextID     uint
	nextLogID  uint
}

// NewMemoryTicketRepository creates a new in-memory ticket repository.
func NewMemoryTicketRepository() *MemoryTicketRepository {
	return &MemoryTicketRepository{
		tickets:    make(map[uint]*models.Ticket),
		ticketTags: make(map[uint]map[uint]bool),
		nextID:     1,
		nextLogID:  1,
	}
}

// GetByID retrieves a ticket by ID within the tenant.
func (r *MemoryTicketRepository) GetByID(ctx context.Context, tenantID, id uint) (*models.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tickets[id]
	if !ok || t.TenantID != tenantID {
		return nil, models.ErrTicketNotFound
	}
	copied := *t
	return &copied, nil
}

// GetByProtocol retrieves a ticket by its external uuid.
func (r *MemoryTicketRepository) GetByProtocol(ctx context.Context, protocol string) (*models.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tickets {
		if t.Protocol == protocol {
			copied := *t
			return &copied, nil
		}
	}
	return nil, models.ErrTicketNotFound
}

// FindLatest returns the newest ticket for the key in the status set.
func (r *MemoryTicketRepository) FindLatest(ctx context.Context, tenantID, contactID, whatsappID uint, entrySource string, statuses []string) (*models.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	statusSet := map[string]bool{}
	for _, s := range statuses {
		statusSet[s] = true
	}

	var latest *models.Ticket
	for _, t := range r.tickets {
		if t.TenantID != tenantID || t.ContactID != contactID ||
			t.WhatsappID != whatsappID || t.EntrySource != entrySource {
			continue
		}
		if len(statuses) > 0 && !statusSet[t.Status] {
			continue
		}
		if latest == nil || t.ID > latest.ID {
			latest = t
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

// Create stores a new ticket.
func (r *MemoryTicketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket.ID = r.nextID
	r.nextID++
	now := time.Now()
	ticket.CreateTime = now
	ticket.ChangeTime = now
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

// Update writes back a ticket.
func (r *MemoryTicketRepository) Update(ctx context.Context, ticket *models.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.tickets[ticket.ID]
	if !ok || existing.TenantID != ticket.TenantID {
		return models.ErrTicketNotFound
	}
	ticket.ChangeTime = time.Now()
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

// AttachTag attaches a tag to a ticket (idempotent).
func (r *MemoryTicketRepository) AttachTag(ctx context.Context, ticketID, tagID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ticketTags[ticketID] == nil {
		r.ticketTags[ticketID] = make(map[uint]bool)
	}
	r.ticketTags[ticketID][tagID] = true
	return nil
}

// TagIDs returns the tags attached to a ticket (test helper).
func (r *MemoryTicketRepository) TagIDs(ticketID uint) []uint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []uint
	for id := range r.ticketTags[ticketID] {
		ids = append(ids, id)
	}
	return ids
}

// AppendAccessLog appends an audit row.
func (r *MemoryTicketRepository) AppendAccessLog(ctx context.Context, ticketID, userID uint, logType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accessLog = append(r.accessLog, models.TicketAccessLog{
		ID:         r.nextLogID,
		TicketID:   ticketID,
		UserID:     userID,
		Type:       logType,
		CreateTime: time.Now(),
	})
	r.nextLogID++
	return nil
}

// ListAccessLog returns the audit rows for a ticket, oldest first.
func (r *MemoryTicketRepository) ListAccessLog(ctx context.Context, ticketID uint) ([]models.TicketAccessLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var entries []models.TicketAccessLog
	for _, e := range r.accessLog {
		if e.TicketID == ticketID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// CloseStalePending closes pending tickets untouched since cutoff.
func (r *MemoryTicketRepository) CloseStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, t := range r.tickets {
		if t.Status == models.TicketStatusPending && t.ChangeTime.Before(cutoff) {
			t.Status = models.TicketStatusClosed
			t.ChangeTime = time.Now()
			n++
		}
	}
	return n, nil
}
