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

// SQLTicketRepository handles database operations for tickets.
type SQLTicketRepository struct {
	db *sql.DB
}

// NewTicketRepository creates a new ticket repository.
func NewTicketRepository(db *sql.DB) *SQLTicketRepository {
	return &SQLTicketRepository{db: db}
}

const ticketColumns = `id, tenant_id, contact_id, whatsapp_id, queue_id, user_id,
	status, entry_source, unread_messages, last_message, protocol, is_group,
	create_time, change_time`

func scanTicket(row interface{ Scan(...any) error }) (*models.Ticket, error) {
	var t models.Ticket
	err := row.Scan(
		&t.ID,
		&t.TenantID,
		&t.ContactID,
		&t.WhatsappID,
		&t.QueueID,
		&t.UserID,
		&t.Status,
		&t.EntrySource,
		&t.UnreadMessages,
		&t.LastMessage,
		&t.Protocol,
		&t.IsGroup,
		&t.CreateTime,
		&t.ChangeTime,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByID retrieves a ticket by ID within the tenant.
func (r *SQLTicketRepository) GetByID(ctx context.Context, tenantID, id uint) (*models.Ticket, error) {
	query := database.ConvertPlaceholders(fmt.Sprintf(
		`SELECT %s FROM tickets WHERE id = $1 AND tenant_id = $2`, ticketColumns))
	ticket, err := scanTicket(r.db.QueryRowContext(ctx, query, id, tenantID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return ticket, nil
}

// GetByProtocol retrieves a ticket by its external uuid. Used by the
// unauthenticated site-chat poll path, so it is not tenant scoped: the
// protocol is an unguessable token.
func (r *SQLTicketRepository) GetByProtocol(ctx context.Context, protocol string) (*models.Ticket, error) {
	query := database.ConvertPlaceholders(fmt.Sprintf(
		`SELECT %s FROM tickets WHERE protocol = $1`, ticketColumns))
	ticket, err := scanTicket(r.db.QueryRowContext(ctx, query, protocol))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ticket by protocol: %w", err)
	}
	return ticket, nil
}

// FindLatest returns the newest ticket for the key whose status is in the
// given set (nil = any status), or (nil, nil) when none exists. Ordering by
// id descending makes the most recent ticket win on tie.
func (r *SQLTicketRepository) FindLatest(ctx context.Context, tenantID, contactID, whatsappID uint, entrySource string, statuses []string) (*models.Ticket, error) {
	args := []any{tenantID, contactID, whatsappID, entrySource}
	statusClause := ""
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, s := range statuses {
			placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
			args = append(args, s)
		}
		statusClause = fmt.Sprintf(" AND status IN (%s)", strings.Join(placeholders, ", "))
	}

	query := database.ConvertPlaceholders(fmt.Sprintf(`
		SELECT %s FROM tickets
		WHERE tenant_id = $1 AND contact_id = $2 AND whatsapp_id = $3 AND entry_source = $4%s
		ORDER BY id DESC
		LIMIT 1`, ticketColumns, statusClause))

	ticket, err := scanTicket(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find ticket: %w", err)
	}
	return ticket, nil
}

// Create inserts a new ticket.
func (r *SQLTicketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	ticket.CreateTime = time.Now()
	ticket.ChangeTime = ticket.CreateTime

	query := database.ConvertPlaceholders(`
		INSERT INTO tickets (
			tenant_id, contact_id, whatsapp_id, queue_id, user_id, status,
			entry_source, unread_messages, last_message, protocol, is_group,
			create_time, change_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`)

	if database.IsMySQL() {
		res, err := r.db.ExecContext(ctx, trimReturning(query),
			ticket.TenantID, ticket.ContactID, ticket.WhatsappID, ticket.QueueID,
			ticket.UserID, ticket.Status, ticket.EntrySource, ticket.UnreadMessages,
			ticket.LastMessage, ticket.Protocol, ticket.IsGroup,
			ticket.CreateTime, ticket.ChangeTime)
		if err != nil {
			return fmt.Errorf("insert ticket: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert ticket id: %w", err)
		}
		ticket.ID = uint(id)
		return nil
	}

	err := r.db.QueryRowContext(ctx, query,
		ticket.TenantID, ticket.ContactID, ticket.WhatsappID, ticket.QueueID,
		ticket.UserID, ticket.Status, ticket.EntrySource, ticket.UnreadMessages,
		ticket.LastMessage, ticket.Protocol, ticket.IsGroup,
		ticket.CreateTime, ticket.ChangeTime).Scan(&ticket.ID)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

// Update writes back a ticket row.
func (r *SQLTicketRepository) Update(ctx context.Context, ticket *models.Ticket) error {
	ticket.ChangeTime = time.Now()
	query := database.ConvertPlaceholders(`
		UPDATE tickets SET
			queue_id = $1, user_id = $2, status = $3, unread_messages = $4,
			last_message = $5, change_time = $6
		WHERE id = $7 AND tenant_id = $8`)

	if _, err := r.db.ExecContext(ctx, query,
		ticket.QueueID, ticket.UserID, ticket.Status, ticket.UnreadMessages,
		ticket.LastMessage, ticket.ChangeTime, ticket.ID, ticket.TenantID); err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	return nil
}

// AttachTag attaches a tag to a ticket. Idempotent: attaching an already
// attached tag is a no-op.
func (r *SQLTicketRepository) AttachTag(ctx context.Context, ticketID, tagID uint) error {
	var query string
	if database.IsMySQL() {
		query = "INSERT IGNORE INTO ticket_tags (ticket_id, tag_id) VALUES (?, ?)"
	} else {
		query = `INSERT INTO ticket_tags (ticket_id, tag_id) VALUES ($1, $2)
			ON CONFLICT (ticket_id, tag_id) DO NOTHING`
	}
	if _, err := r.db.ExecContext(ctx, query, ticketID, tagID); err != nil {
		return fmt.Errorf("attach ticket tag: %w", err)
	}
	return nil
}

// AppendAccessLog appends an audit row. The log is append-only.
func (r *SQLTicketRepository) AppendAccessLog(ctx context.Context, ticketID, userID uint, logType string) error {
	query := database.ConvertPlaceholders(`
		INSERT INTO ticket_access_logs (ticket_id, user_id, type, create_time)
		VALUES ($1, $2, $3, $4)`)
	if _, err := r.db.ExecContext(ctx, query, ticketID, userID, logType, time.Now()); err != nil {
		return fmt.Errorf("append access log: %w", err)
	}
	return nil
}

// ListAccessLog returns the audit rows for a ticket, oldest first.
func (r *SQLTicketRepository) ListAccessLog(ctx context.Context, ticketID uint) ([]models.TicketAccessLog, error) {
	query := database.ConvertPlaceholders(`
		SELECT id, ticket_id, user_id, type, create_time
		FROM ticket_access_logs
		WHERE ticket_id = $1
		ORDER BY id`)

	rows, err := r.db.QueryContext(ctx, query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("list access log: %w", err)
	}
	defer rows.Close()

	var entries []models.TicketAccessLog
	for rows.Next() {
		var e models.TicketAccessLog
		if err := rows.Scan(&e.ID, &e.TicketID, &e.UserID, &e.Type, &e.CreateTime); err != nil {
			return nil, fmt.Errorf("scan access log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CloseStalePending closes pending tickets with no activity since cutoff.
func (r *SQLTicketRepository) CloseStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	query := database.ConvertPlaceholders(`
		UPDATE tickets SET status = $1, change_time = $2
		WHERE status = $3 AND change_time < $4`)

	res, err := r.db.ExecContext(ctx, query,
		models.TicketStatusClosed, time.Now(), models.TicketStatusPending, cutoff)
	if err != nil {
		return 0, fmt.Errorf("close stale pending tickets: %w", err)
	}
	return res.RowsAffected()
}
