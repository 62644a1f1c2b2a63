package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zapdesk-io/zapdesk/internal/database"
	"github.com/zapdesk-io/zapdesk/internal/models"
)

// SQLEntryConfigRepository handles database operations for channel entry
// configs.
type SQLEntryConfigRepository struct {
	db *sql.DB
}

// NewEntryConfigRepository creates a new entry config repository.
func NewEntryConfigRepository(db *sql.DB) *SQLEntryConfigRepository {
	return &SQLEntryConfigRepository{db: db}
}

// Get returns the stored config for (tenant, entry source), or (nil, nil)
// when none has been saved.
func (r *SQLEntryConfigRepository) Get(ctx context.Context, tenantID uint, entrySource string) (*models.ChannelEntryConfig, error) {
	query := database.ConvertPlaceholders(`
		SELECT id, tenant_id, entry_source, queue_id, tag_id, whatsapp_id,
		       welcome_message, create_time, change_time
		FROM channel_entry_configs
		WHERE tenant_id = $1 AND entry_source = $2`)

	var c models.ChannelEntryConfig
	err := r.db.QueryRowContext(ctx, query, tenantID, entrySource).Scan(
		&c.ID, &c.TenantID, &c.EntrySource, &c.QueueID, &c.TagID, &c.WhatsappID,
		&c.WelcomeMessage, &c.CreateTime, &c.ChangeTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry config: %w", err)
	}
	return &c, nil
}

// Upsert inserts or updates the single config row for (tenant, entry source).
func (r *SQLEntryConfigRepository) Upsert(ctx context.Context, cfg *models.ChannelEntryConfig) error {
	existing, err := r.Get(ctx, cfg.TenantID, cfg.EntrySource)
	if err != nil {
		return err
	}

	now := time.Now()
	if existing == nil {
		cfg.CreateTime = now
		cfg.ChangeTime = now
		query := database.ConvertPlaceholders(`
			INSERT INTO channel_entry_configs (
				tenant_id, entry_source, queue_id, tag_id, whatsapp_id,
				welcome_message, create_time, change_time
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`)

		if database.IsMySQL() {
			res, insErr := r.db.ExecContext(ctx, trimReturning(query),
				cfg.TenantID, cfg.EntrySource, cfg.QueueID, cfg.TagID,
				cfg.WhatsappID, cfg.WelcomeMessage, cfg.CreateTime, cfg.ChangeTime)
			if insErr != nil {
				return fmt.Errorf("insert entry config: %w", insErr)
			}
			id, _ := res.LastInsertId()
			cfg.ID = uint(id)
			return nil
		}

		if err := r.db.QueryRowContext(ctx, query,
			cfg.TenantID, cfg.EntrySource, cfg.QueueID, cfg.TagID,
			cfg.WhatsappID, cfg.WelcomeMessage, cfg.CreateTime, cfg.ChangeTime).Scan(&cfg.ID); err != nil {
			return fmt.Errorf("insert entry config: %w", err)
		}
		return nil
	}

	cfg.ID = existing.ID
	cfg.CreateTime = existing.CreateTime
	cfg.ChangeTime = now
	query := database.ConvertPlaceholders(`
		UPDATE channel_entry_configs SET
			queue_id = $1, tag_id = $2, whatsapp_id = $3,
			welcome_message = $4, change_time = $5
		WHERE id = $6 AND tenant_id = $7`)

	if _, err := r.db.ExecContext(ctx, query,
		cfg.QueueID, cfg.TagID, cfg.WhatsappID, cfg.WelcomeMessage,
		cfg.ChangeTime, cfg.ID, cfg.TenantID); err != nil {
		return fmt.Errorf("update entry config: %w", err)
	}
	return nil
}
