package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/zapdesk-io/zapdesk/internal/models"
)

// MemoryTagRepository implements TagRepository with in-memory storage.
type MemoryTagRepository struct {
	mu     sync.RWMutex
	tags   map[uint]*models.Tag
	nextID uint
}

// NewMemoryTagRepository creates a new in-memory tag repository.
func NewMemoryTagRepository() *MemoryTagRepository {
	return &MemoryTagRepository{tags: make(map[uint]*models.Tag), nextID: 1}
}

// GetByID retrieves a tag by ID within the tenant.
func (r *MemoryTagRepository) GetByID(ctx context.Context, tenantID, id uint) (*models.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tags[id]
	if !ok || t.TenantID != tenantID {
		return nil, nil
	}
	copied := *t
	return &copied, nil
}

// FindOrCreateByName returns or creates the tenant's tag with this name.
func (r *MemoryTagRepository) FindOrCreateByName(ctx context.Context, tenantID uint, name, color string, kanban int) (*models.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tags {
		if t.TenantID == tenantID && t.Name == name {
			copied := *t
			return &copied, nil
		}
	}
	now := time.Now()
	t := &models.Tag{
		ID:         r.nextID,
		TenantID:   tenantID,
		Name:       name,
		Color:      color,
		Kanban:     kanban,
		CreateTime: now,
		ChangeTime: now,
	}
	r.nextID++
	r.tags[t.ID] = t
	copied := *t
	return &copied, nil
}

// MemoryQueueRepository implements QueueRepository with in-memory storage.
type MemoryQueueRepository struct {
	mu     sync.RWMutex
	queues map[uint]*models.Queue
	nextID uint
}

// NewMemoryQueueRepository creates a new in-memory queue repository.
func NewMemoryQueueRepository() *MemoryQueueRepository {
	return &MemoryQueueRepository{queues: make(map[uint]*models.Queue), nextID: 1}
}

// Add seeds a queue and returns it (test helper).
func (r *MemoryQueueRepository) Add(tenantID uint, name string) *models.Queue {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := &models.Queue{ID: r.nextID, TenantID: tenantID, Name: name, CreateTime: time.Now(), ChangeTime: time.Now()}
	r.nextID++
	r.queues[q.ID] = q
	copied := *q
	return &copied
}

// GetByID retrieves a queue by ID within the tenant.
func (r *MemoryQueueRepository) GetByID(ctx context.Context, tenantID, id uint) (*models.Queue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.queues[id]
	if !ok || q.TenantID != tenantID {
		return nil, nil
	}
	copied := *q
	return &copied, nil
}

// FirstByTenant returns the tenant's lowest-id queue.
func (r *MemoryQueueRepository) FirstByTenant(ctx context.Context, tenantID uint) (*models.Queue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var first *models.Queue
	for _, q := range r.queues {
		if q.TenantID != tenantID {
			continue
		}
		if first == nil || q.ID < first.ID {
			first = q
		}
	}
	if first == nil {
		return nil, nil
	}
	copied := *first
	return &copied, nil
}

// MemoryWhatsappRepository implements WhatsappRepository with in-memory
// storage.
type MemoryWhatsappRepository struct {
	mu        sync.RWMutex
	whatsapps map[uint]*models.Whatsapp
	nextID    uint
}

// NewMemoryWhatsappRepository creates a new in-memory whatsapp repository.
func NewMemoryWhatsappRepository() *MemoryWhatsappRepository {
	return &MemoryWhatsappRepository{whatsapps: make(map[uint]*models.Whatsapp), nextID: 1}
}

// Add seeds a connection and returns it (test helper).
func (r *MemoryWhatsappRepository) Add(tenantID uint, name string, isDefault bool) *models.Whatsapp {
	r.mu.Lock()
	defer r.mu.Unlock()
	w := &models.Whatsapp{ID: r.nextID, TenantID: tenantID, Name: name, Status: "CONNECTED", IsDefault: isDefault, CreateTime: time.Now(), ChangeTime: time.Now()}
	r.nextID++
	r.whatsapps[w.ID] = w
	copied := *w
	return &copied
}

// GetByID retrieves a connection by ID within the tenant.
func (r *MemoryWhatsappRepository) GetByID(ctx context.Context, tenantID, id uint) (*models.Whatsapp, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.whatsapps[id]
	if !ok || w.TenantID != tenantID {
		return nil, nil
	}
	copied := *w
	return &copied, nil
}

// GetDefault returns the tenant's default connection.
func (r *MemoryWhatsappRepository) GetDefault(ctx context.Context, tenantID uint) (*models.Whatsapp, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best *models.Whatsapp
	for _, w := range r.whatsapps {
		if w.TenantID != tenantID {
			continue
		}
		if best == nil || (w.IsDefault && !best.IsDefault) || (w.IsDefault == best.IsDefault && w.ID < best.ID) {
			best = w
		}
	}
	if best == nil {
		return nil, nil
	}
	copied := *best
	return &copied, nil
}

// MemoryEntryConfigRepository implements EntryConfigRepository with
// in-memory storage.
type MemoryEntryConfigRepository struct {
	mu      sync.RWMutex
	configs map[string]*models.ChannelEntryConfig
	nextID  uint
}

// NewMemoryEntryConfigRepository creates a new in-memory entry config
// repository.
func NewMemoryEntryConfigRepository() *MemoryEntryConfigRepository {
	return &MemoryEntryConfigRepository{configs: make(map[string]*models.ChannelEntryConfig), nextID: 1}
}

func entryConfigKey(tenantID uint, entrySource string) string {
	return fmt.Sprintf("%d:%s", tenantID, entrySource)
}

// Get returns the stored config or (nil, nil).
func (r *MemoryEntryConfigRepository) Get(ctx context.Context, tenantID uint, entrySource string) (*models.ChannelEntryConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.configs[entryConfigKey(tenantID, entrySource)]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

// Upsert inserts or updates the config row.
func (r *MemoryEntryConfigRepository) Upsert(ctx context.Context, cfg *models.ChannelEntryConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := entryConfigKey(cfg.TenantID, cfg.EntrySource)
	now := time.Now()
	if existing, ok := r.configs[key]; ok {
		cfg.ID = existing.ID
		cfg.CreateTime = existing.CreateTime
	} else {
		cfg.ID = r.nextID
		r.nextID++
		cfg.CreateTime = now
	}
	cfg.ChangeTime = now
	copied := *cfg
	r.configs[key] = &copied
	return nil
}

// MemoryUserRepository implements UserRepository with in-memory storage.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	users  map[uint]*models.User
	nextID uint
}

// NewMemoryUserRepository creates a new in-memory user repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[uint]*models.User), nextID: 1}
}

// Add seeds a user and returns it (test helper).
func (r *MemoryUserRepository) Add(user models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == 0 {
		user.ID = r.nextID
		r.nextID++
	} else if user.ID >= r.nextID {
		r.nextID = user.ID + 1
	}
	r.users[user.ID] = &user
	copied := user
	return &copied
}

// GetByID retrieves a user by ID within the tenant.
func (r *MemoryUserRepository) GetByID(ctx context.Context, tenantID, id uint) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok || u.TenantID != tenantID {
		return nil, fmt.Errorf("user %d: %w", id, sql.ErrNoRows)
	}
	copied := *u
	return &copied, nil
}
