package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zapdesk-io/zapdesk/internal/database"
	"github.com/zapdesk-io/zapdesk/internal/models"
)

// SQLContactRepository handles database operations for contacts.
type SQLContactRepository struct {
	db *sql.DB
}

// NewContactRepository creates a new contact repository.
func NewContactRepository(db *sql.DB) *SQLContactRepository {
	return &SQLContactRepository{db: db}
}

const contactColumns = `id, tenant_id, name, number, canonical_number, email,
	company_name, is_group, active, blocked, create_time, change_time`

func scanContact(row interface{ Scan(...any) error }) (*models.Contact, error) {
	var c models.Contact
	err := row.Scan(
		&c.ID,
		&c.TenantID,
		&c.Name,
		&c.Number,
		&c.CanonicalNumber,
		&c.Email,
		&c.CompanyName,
		&c.IsGroup,
		&c.Active,
		&c.Blocked,
		&c.CreateTime,
		&c.ChangeTime,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByID retrieves a contact by ID within the tenant.
func (r *SQLContactRepository) GetByID(ctx context.Context, tenantID, id uint) (*models.Contact, error) {
	query := database.ConvertPlaceholders(fmt.Sprintf(
		`SELECT %s FROM contacts WHERE id = $1 AND tenant_id = $2`, contactColumns))
	contact, err := scanContact(r.db.QueryRowContext(ctx, query, id, tenantID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrContactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return contact, nil
}

// FindByNumber looks up a contact by canonical number, falling back to the
// legacy raw number column for rows that predate canonicalization. Returns
// (nil, nil) when no row matches.
func (r *SQLContactRepository) FindByNumber(ctx context.Context, tenantID uint, canonical, raw string) (*models.Contact, error) {
	query := database.ConvertPlaceholders(fmt.Sprintf(`
		SELECT %s FROM contacts
		WHERE tenant_id = $1
		  AND (canonical_number = $2 OR number = $3 OR number = $4)
		ORDER BY canonical_number = $5 DESC, id ASC
		LIMIT 1`, contactColumns))

	contact, err := scanContact(r.db.QueryRowContext(ctx, query, tenantID, canonical, canonical, raw, canonical))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find contact by number: %w", err)
	}
	return contact, nil
}

// Create inserts a new contact.
func (r *SQLContactRepository) Create(ctx context.Context, contact *models.Contact) error {
	contact.CreateTime = time.Now()
	contact.ChangeTime = contact.CreateTime

	query := database.ConvertPlaceholders(`
		INSERT INTO contacts (
			tenant_id, name, number, canonical_number, email, company_name,
			is_group, active, blocked, create_time, change_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`)

	if database.IsMySQL() {
		res, err := r.db.ExecContext(ctx, trimReturning(query),
			contact.TenantID, contact.Name, contact.Number, contact.CanonicalNumber,
			contact.Email, contact.CompanyName, contact.IsGroup, contact.Active,
			contact.Blocked, contact.CreateTime, contact.ChangeTime)
		if err != nil {
			return fmt.Errorf("insert contact: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert contact id: %w", err)
		}
		contact.ID = uint(id)
		return nil
	}

	err := r.db.QueryRowContext(ctx, query,
		contact.TenantID, contact.Name, contact.Number, contact.CanonicalNumber,
		contact.Email, contact.CompanyName, contact.IsGroup, contact.Active,
		contact.Blocked, contact.CreateTime, contact.ChangeTime).Scan(&contact.ID)
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

// Update writes back a contact row.
func (r *SQLContactRepository) Update(ctx context.Context, contact *models.Contact) error {
	contact.ChangeTime = time.Now()
	query := database.ConvertPlaceholders(`
		UPDATE contacts SET
			name = $1, number = $2, canonical_number = $3, email = $4,
			company_name = $5, is_group = $6, active = $7, blocked = $8,
			change_time = $9
		WHERE id = $10 AND tenant_id = $11`)

	if _, err := r.db.ExecContext(ctx, query,
		contact.Name, contact.Number, contact.CanonicalNumber, contact.Email,
		contact.CompanyName, contact.IsGroup, contact.Active, contact.Blocked,
		contact.ChangeTime, contact.ID, contact.TenantID); err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	return nil
}

// GetTags returns the tags attached to a contact.
func (r *SQLContactRepository) GetTags(ctx context.Context, contactID uint) ([]models.Tag, error) {
	query := database.ConvertPlaceholders(`
		SELECT t.id, t.tenant_id, t.name, t.color, t.kanban, t.create_time, t.change_time
		FROM tags t
		JOIN contact_tags ct ON ct.tag_id = t.id
		WHERE ct.contact_id = $1
		ORDER BY t.id`)

	rows, err := r.db.QueryContext(ctx, query, contactID)
	if err != nil {
		return nil, fmt.Errorf("get contact tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.TenantID, &t.Name, &t.Color, &t.Kanban, &t.CreateTime, &t.ChangeTime); err != nil {
			return nil, fmt.Errorf("scan contact tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// SetCustomFields upserts the given free-form fields of a contact. Keys not
// named are left untouched.
func (r *SQLContactRepository) SetCustomFields(ctx context.Context, contactID uint, fields []models.ContactCustomField) error {
	var query string
	if database.IsMySQL() {
		query = `INSERT INTO contact_custom_fields (contact_id, name, value) VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE value = VALUES(value)`
	} else {
		query = `INSERT INTO contact_custom_fields (contact_id, name, value) VALUES ($1, $2, $3)
			ON CONFLICT (contact_id, name) DO UPDATE SET value = EXCLUDED.value`
	}
	for _, f := range fields {
		if _, err := r.db.ExecContext(ctx, query, contactID, f.Name, f.Value); err != nil {
			return fmt.Errorf("upsert custom field %q: %w", f.Name, err)
		}
	}
	return nil
}

// trimReturning strips the RETURNING clause for drivers without it.
func trimReturning(query string) string {
	if idx := strings.LastIndex(query, "RETURNING"); idx >= 0 {
		return query[:idx]
	}
	return query
}
