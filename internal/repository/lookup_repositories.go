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

// SQLTagRepository handles database operations for tags.
type SQLTagRepository struct {
	db *sql.DB
}

// NewTagRepository creates a new tag repository.
func NewTagRepository(db *sql.DB) *SQLTagRepository {
	return &SQLTagRepository{db: db}
}

// GetByID retrieves a tag by ID within the tenant. Returns (nil, nil) when
// absent.
func (r *SQLTagRepository) GetByID(ctx context.Context, tenantID, id uint) (*models.Tag, error) {
	query := database.ConvertPlaceholders(`
		SELECT id, tenant_id, name, color, kanban, create_time, change_time
		FROM tags WHERE id = $1 AND tenant_id = $2`)
	var t models.Tag
	err := r.db.QueryRowContext(ctx, query, id, tenantID).Scan(
		&t.ID, &t.TenantID, &t.Name, &t.Color, &t.Kanban, &t.CreateTime, &t.ChangeTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return &t, nil
}

// FindOrCreateByName returns the tenant's tag with the given name, creating
// it with the provided color and kanban flag when missing. The unique index
// on (tenant_id, name) keeps concurrent callers from duplicating it; a
// losing insert falls back to the select.
func (r *SQLTagRepository) FindOrCreateByName(ctx context.Context, tenantID uint, name, color string, kanban int) (*models.Tag, error) {
	selectQuery := database.ConvertPlaceholders(`
		SELECT id, tenant_id, name, color, kanban, create_time, change_time
		FROM tags WHERE tenant_id = $1 AND name = $2`)

	var t models.Tag
	err := r.db.QueryRowContext(ctx, selectQuery, tenantID, name).Scan(
		&t.ID, &t.TenantID, &t.Name, &t.Color, &t.Kanban, &t.CreateTime, &t.ChangeTime)
	if err == nil {
		return &t, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find tag: %w", err)
	}

	now := time.Now()
	insertQuery := database.ConvertPlaceholders(`
		INSERT INTO tags (tenant_id, name, color, kanban, create_time, change_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`)

	if database.IsMySQL() {
		res, insErr := r.db.ExecContext(ctx, trimReturning(insertQuery), tenantID, name, color, kanban, now, now)
		if insErr == nil {
			id, _ := res.LastInsertId()
			return &models.Tag{ID: uint(id), TenantID: tenantID, Name: name, Color: color, Kanban: kanban, CreateTime: now, ChangeTime: now}, nil
		}
	} else {
		var id uint
		insErr := r.db.QueryRowContext(ctx, insertQuery, tenantID, name, color, kanban, now, now).Scan(&id)
		if insErr == nil {
			return &models.Tag{ID: id, TenantID: tenantID, Name: name, Color: color, Kanban: kanban, CreateTime: now, ChangeTime: now}, nil
		}
	}

	// Lost a race with a concurrent creator; the row exists now.
	err = r.db.QueryRowContext(ctx, selectQuery, tenantID, name).Scan(
		&t.ID, &t.TenantID, &t.Name, &t.Color, &t.Kanban, &t.CreateTime, &t.ChangeTime)
	if err != nil {
		return nil, fmt.Errorf("find-or-create tag %q: %w", name, err)
	}
	return &t, nil
}

// SQLQueueRepository handles database operations for queues.
type SQLQueueRepository struct {
	db *sql.DB
}

// NewQueueRepository creates a new queue repository.
func NewQueueRepository(db *sql.DB) *SQLQueueRepository {
	return &SQLQueueRepository{db: db}
}

// GetByID retrieves a queue by ID within the tenant. Returns (nil, nil)
// when absent.
func (r *SQLQueueRepository) GetByID(ctx context.Context, tenantID, id uint) (*models.Queue, error) {
	query := database.ConvertPlaceholders(`
		SELECT id, tenant_id, name, color, create_time, change_time
		FROM queues WHERE id = $1 AND tenant_id = $2`)
	var q models.Queue
	err := r.db.QueryRowContext(ctx, query, id, tenantID).Scan(
		&q.ID, &q.TenantID, &q.Name, &q.Color, &q.CreateTime, &q.ChangeTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get queue: %w", err)
	}
	return &q, nil
}

// FirstByTenant returns the tenant's lowest-id queue, or (nil, nil) when
// the tenant has none. Used as the computed routing default.
func (r *SQLQueueRepository) FirstByTenant(ctx context.Context, tenantID uint) (*models.Queue, error) {
	query := database.ConvertPlaceholders(`
		SELECT id, tenant_id, name, color, create_time, change_time
		FROM queues WHERE tenant_id = $1
		ORDER BY id ASC LIMIT 1`)
	var q models.Queue
	err := r.db.QueryRowContext(ctx, query, tenantID).Scan(
		&q.ID, &q.TenantID, &q.Name, &q.Color, &q.CreateTime, &q.ChangeTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("first queue: %w", err)
	}
	return &q, nil
}

// SQLWhatsappRepository handles database operations for channel connections.
type SQLWhatsappRepository struct {
	db *sql.DB
}

// NewWhatsappRepository creates a new whatsapp repository.
func NewWhatsappRepository(db *sql.DB) *SQLWhatsappRepository {
	return &SQLWhatsappRepository{db: db}
}

const whatsappColumns = `id, tenant_id, name, status, is_default, create_time, change_time`

func scanWhatsapp(row interface{ Scan(...any) error }) (*models.Whatsapp, error) {
	var w models.Whatsapp
	err := row.Scan(&w.ID, &w.TenantID, &w.Name, &w.Status, &w.IsDefault, &w.CreateTime, &w.ChangeTime)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// GetByID retrieves a connection by ID within the tenant. Returns
// (nil, nil) when absent.
func (r *SQLWhatsappRepository) GetByID(ctx context.Context, tenantID, id uint) (*models.Whatsapp, error) {
	query := database.ConvertPlaceholders(fmt.Sprintf(
		`SELECT %s FROM whatsapps WHERE id = $1 AND tenant_id = $2`, whatsappColumns))
	w, err := scanWhatsapp(r.db.QueryRowContext(ctx, query, id, tenantID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get whatsapp: %w", err)
	}
	return w, nil
}

// GetDefault returns the tenant's default connection, falling back to the
// lowest-id one. Returns (nil, nil) when the tenant has no connection.
func (r *SQLWhatsappRepository) GetDefault(ctx context.Context, tenantID uint) (*models.Whatsapp, error) {
	query := database.ConvertPlaceholders(fmt.Sprintf(`
		SELECT %s FROM whatsapps WHERE tenant_id = $1
		ORDER BY is_default DESC, id ASC LIMIT 1`, whatsappColumns))
	w, err := scanWhatsapp(r.db.QueryRowContext(ctx, query, tenantID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("default whatsapp: %w", err)
	}
	return w, nil
}
