package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zapdesk-io/zapdesk/internal/database"
	"github.com/zapdesk-io/zapdesk/internal/models"
)

// SQLMessageRepository handles database operations for messages.
type SQLMessageRepository struct {
	db *sql.DB
}

// NewMessageRepository creates a new message repository.
func NewMessageRepository(db *sql.DB) *SQLMessageRepository {
	return &SQLMessageRepository{db: db}
}

// Create inserts a message row.
func (r *SQLMessageRepository) Create(ctx context.Context, message *models.Message) error {
	message.CreateTime = time.Now()

	query := database.ConvertPlaceholders(`
		INSERT INTO messages (
			ticket_id, contact_id, body, from_me, remote_jid, participant,
			is_private, media_type, ack, create_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`)

	if database.IsMySQL() {
		res, err := r.db.ExecContext(ctx, trimReturning(query),
			message.TicketID, message.ContactID, message.Body, message.FromMe,
			message.RemoteJid, message.Participant, message.IsPrivate,
			message.MediaType, message.Ack, message.CreateTime)
		if err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert message id: %w", err)
		}
		message.ID = uint(id)
		return nil
	}

	err := r.db.QueryRowContext(ctx, query,
		message.TicketID, message.ContactID, message.Body, message.FromMe,
		message.RemoteJid, message.Participant, message.IsPrivate,
		message.MediaType, message.Ack, message.CreateTime).Scan(&message.ID)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListByTicket returns messages for a ticket in receipt order. Private
// notes are excluded unless includePrivate is set (the public site-chat
// read path never sets it).
func (r *SQLMessageRepository) ListByTicket(ctx context.Context, ticketID uint, includePrivate bool, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, ticket_id, contact_id, body, from_me, remote_jid,
		       participant, is_private, media_type, ack, create_time
		FROM messages
		WHERE ticket_id = $1`
	args := []any{ticketID}
	if !includePrivate {
		query += ` AND is_private = $2`
		args = append(args, false)
	}
	query += fmt.Sprintf(` ORDER BY id LIMIT %d`, limit)

	rows, err := r.db.QueryContext(ctx, database.ConvertPlaceholders(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.TicketID, &m.ContactID, &m.Body, &m.FromMe,
			&m.RemoteJid, &m.Participant, &m.IsPrivate, &m.MediaType, &m.Ack,
			&m.CreateTime); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
