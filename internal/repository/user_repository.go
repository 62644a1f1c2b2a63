package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/zapdesk-io/zapdesk/internal/database"
	"github.com/zapdesk-io/zapdesk/internal/models"
)

// SQLUserRepository handles database operations for users.
type SQLUserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *sql.DB) *SQLUserRepository {
	return &SQLUserRepository{db: db}
}

// GetByID retrieves a user by ID within the tenant, with the allowed
// contact tags joined in.
func (r *SQLUserRepository) GetByID(ctx context.Context, tenantID, id uint) (*models.User, error) {
	query := database.ConvertPlaceholders(`
		SELECT id, tenant_id, name, email, profile, create_time, change_time
		FROM users WHERE id = $1 AND tenant_id = $2`)

	var u models.User
	err := r.db.QueryRowContext(ctx, query, id, tenantID).Scan(
		&u.ID, &u.TenantID, &u.Name, &u.Email, &u.Profile, &u.CreateTime, &u.ChangeTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, sql.ErrNoRows)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	tagQuery := database.ConvertPlaceholders(`
		SELECT t.id, t.tenant_id, t.name, t.color, t.kanban, t.create_time, t.change_time
		FROM tags t
		JOIN user_contact_tags uct ON uct.tag_id = t.id
		WHERE uct.user_id = $1
		ORDER BY t.id`)

	rows, err := r.db.QueryContext(ctx, tagQuery, id)
	if err != nil {
		return nil, fmt.Errorf("get user tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.TenantID, &t.Name, &t.Color, &t.Kanban, &t.CreateTime, &t.ChangeTime); err != nil {
			return nil, fmt.Errorf("scan user tag: %w", err)
		}
		u.AllowedContactTags = append(u.AllowedContactTags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &u, nil
}
