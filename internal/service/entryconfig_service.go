package service

import (
	"context"
	"fmt"

	"github.com/zapdesk-io/zapdesk/internal/models"
	"github.com/zapdesk-io/zapdesk/internal/repository"
)

// entryTagDefaults maps each configurable entry source to its conventional
// default tag. The tag is found-or-created on demand.
var entryTagDefaults = map[string]struct {
	Name  string
	Color string
}{
	models.EntrySourceLead:     {Name: "Lead", Color: "#7C3AED"},
	models.EntrySourceReseller: {Name: "Revendedor", Color: "#2563EB"},
	models.EntrySourceSiteChat: {Name: "Chat do site", Color: "#059669"},
}

// EntryConfigService resolves and administers per (tenant, entry source)
// routing defaults.
type EntryConfigService struct {
	configs   repository.EntryConfigRepository
	queues    repository.QueueRepository
	tags      repository.TagRepository
	whatsapps repository.WhatsappRepository
}

// NewEntryConfigService creates a new entry config service.
func NewEntryConfigService(configs repository.EntryConfigRepository, queues repository.QueueRepository, tags repository.TagRepository, whatsapps repository.WhatsappRepository) *EntryConfigService {
	return &EntryConfigService{configs: configs, queues: queues, tags: tags, whatsapps: whatsapps}
}

// GetConfig returns the stored config verbatim when one exists, otherwise a
// computed default: the tenant's first queue and the conventional tag for
// the entry source. Computed defaults are never persisted, so the stored
// table only ever holds explicit admin choices.
func (s *EntryConfigService) GetConfig(ctx context.Context, tenantID uint, entrySource string) (*models.ResolvedEntryConfig, error) {
	if !models.ValidConfigEntrySource(entrySource) {
		return nil, fmt.Errorf("%q: %w", entrySource, models.ErrInvalidEntrySource)
	}

	stored, err := s.configs.Get(ctx, tenantID, entrySource)
	if err != nil {
		return nil, fmt.Errorf("get entry config: %w", err)
	}
	if stored != nil {
		return &models.ResolvedEntryConfig{
			EntrySource:    entrySource,
			QueueID:        models.DerefUint(stored.QueueID),
			TagID:          models.DerefUint(stored.TagID),
			WhatsappID:     models.DerefUint(stored.WhatsappID),
			WelcomeMessage: models.DerefString(stored.WelcomeMessage),
			Stored:         true,
		}, nil
	}

	resolved := &models.ResolvedEntryConfig{EntrySource: entrySource}

	queue, err := s.queues.FirstByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("default queue: %w", err)
	}
	if queue != nil {
		resolved.QueueID = queue.ID
	}

	def := entryTagDefaults[entrySource]
	tag, err := s.tags.FindOrCreateByName(ctx, tenantID, def.Name, def.Color, 0)
	if err != nil {
		return nil, fmt.Errorf("default tag: %w", err)
	}
	resolved.TagID = tag.ID

	return resolved, nil
}

// CreateOrUpdate validates and persists an explicit entry config. Every
// referenced id is revalidated against the tenant so a caller can never
// point a config at another tenant's queue, tag or connection.
func (s *EntryConfigService) CreateOrUpdate(ctx context.Context, tenantID uint, req *models.EntryConfigUpdateRequest) (*models.ChannelEntryConfig, error) {
	if !models.ValidConfigEntrySource(req.EntrySource) {
		return nil, fmt.Errorf("%q: %w", req.EntrySource, models.ErrInvalidEntrySource)
	}

	if req.QueueID != nil {
		queue, err := s.queues.GetByID(ctx, tenantID, *req.QueueID)
		if err != nil {
			return nil, fmt.Errorf("validate queue: %w", err)
		}
		if queue == nil {
			return nil, fmt.Errorf("queue %d: %w", *req.QueueID, models.ErrCrossTenantReference)
		}
	}
	if req.TagID != nil {
		tag, err := s.tags.GetByID(ctx, tenantID, *req.TagID)
		if err != nil {
			return nil, fmt.Errorf("validate tag: %w", err)
		}
		if tag == nil {
			return nil, fmt.Errorf("tag %d: %w", *req.TagID, models.ErrCrossTenantReference)
		}
	}
	if req.WhatsappID != nil {
		conn, err := s.whatsapps.GetByID(ctx, tenantID, *req.WhatsappID)
		if err != nil {
			return nil, fmt.Errorf("validate connection: %w", err)
		}
		if conn == nil {
			return nil, fmt.Errorf("connection %d: %w", *req.WhatsappID, models.ErrCrossTenantReference)
		}
	}

	cfg := &models.ChannelEntryConfig{
		TenantID:       tenantID,
		EntrySource:    req.EntrySource,
		QueueID:        req.QueueID,
		TagID:          req.TagID,
		WhatsappID:     req.WhatsappID,
		WelcomeMessage: models.NullableString(req.WelcomeMessage),
	}
	if err := s.configs.Upsert(ctx, cfg); err != nil {
		return nil, fmt.Errorf("save entry config: %w", err)
	}
	return cfg, nil
}
