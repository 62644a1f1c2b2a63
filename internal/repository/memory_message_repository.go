package repository

import (
	"context"
	"sync"
	"time"

	"github.com/zapdesk-io/zapdesk/internal/models"
)

// MemoryMessageRepository implements MessageRepository with in-memory
// storage for tests and dev mode.
type MemoryMessageRepository struct {
	mu       sync.RWMutex
	messages []models.Message
	nextID   uint
}

// NewMemoryMessageRepository creates a new in-memory message repository.
func NewMemoryMessageRepository() *MemoryMessageRepository {
	return &MemoryMessageRepository{nextID: 1}
}

// Create stores a message.
func (r *MemoryMessageRepository) Create(ctx context.Context, message *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	message.ID = r.nextID
	r.nextID++
	message.CreateTime = time.Now()
	r.messages = append(r.messages, *message)
	return nil
}

// ListByTicket returns a ticket's messages in receipt order.
func (r *MemoryMessageRepository) ListByTicket(ctx context.Context, ticketID uint, includePrivate bool, limit int) ([]models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	var out []models.Message
	for _, m := range r.messages {
		if m.TicketID != ticketID {
			continue
		}
		if m.IsPrivate && !includePrivate {
			continue
		}
		out = append(out, m)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
