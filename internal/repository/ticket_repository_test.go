package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapdesk-io/zapdesk/internal/database"
	"github.com/zapdesk-io/zapdesk/internal/models"
)

func newTicketMock(t *testing.T) (*SQLTicketRepository, sqlmock.Sqlmock) {
	t.Helper()
	database.SetDriver("postgres")
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTicketRepository(db), mock
}

func ticketRows(id uint, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "tenant_id", "contact_id", "whatsapp_id", "queue_id", "user_id",
		"status", "entry_source", "unread_messages", "last_message", "protocol",
		"is_group", "create_time", "change_time",
	}).AddRow(id, 1, 10, 3, nil, nil, status, "lead", 0, "", "proto-uuid", false, now, now)
}

func TestTicketGetByID(t *testing.T) {
	repo, mock := newTicketMock(t)

	mock.ExpectQuery(`SELECT .+ FROM tickets WHERE id = \$1 AND tenant_id = \$2`).
		WithArgs(42, 1).
		WillReturnRows(ticketRows(42, models.TicketStatusOpen))

	ticket, err := repo.GetByID(context.Background(), 1, 42)
	require.NoError(t, err)
	assert.Equal(t, uint(42), ticket.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketGetByIDNotFound(t *testing.T) {
	repo, mock := newTicketMock(t)

	mock.ExpectQuery(`SELECT .+ FROM tickets WHERE id = \$1 AND tenant_id = \$2`).
		WithArgs(99, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), 1, 99)
	assert.ErrorIs(t, err, models.ErrTicketNotFound)
}

func TestTicketFindLatestWithStatuses(t *testing.T) {
	repo, mock := newTicketMock(t)

	mock.ExpectQuery(`SELECT .+ FROM tickets\s+WHERE tenant_id = \$1 AND contact_id = \$2 AND whatsapp_id = \$3 AND entry_source = \$4 AND status IN \(\$5, \$6, \$7, \$8\)\s+ORDER BY id DESC\s+LIMIT 1`).
		WithArgs(1, 10, 3, "lead", "open", "pending", "bot", "lgpd").
		WillReturnRows(ticketRows(7, models.TicketStatusPending))

	ticket, err := repo.FindLatest(context.Background(), 1, 10, 3, "lead", models.ActiveTicketStatuses())
	require.NoError(t, err)
	require.NotNil(t, ticket)
	assert.Equal(t, uint(7), ticket.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketFindLatestNone(t *testing.T) {
	repo, mock := newTicketMock(t)

	mock.ExpectQuery(`SELECT .+ FROM tickets`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	ticket, err := repo.FindLatest(context.Background(), 1, 10, 3, "lead", nil)
	require.NoError(t, err)
	assert.Nil(t, ticket)
}

func TestTicketCreatePostgres(t *testing.T) {
	repo, mock := newTicketMock(t)

	mock.ExpectQuery(`INSERT INTO tickets .+RETURNING id`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(15))

	ticket := &models.Ticket{
		TenantID:    1,
		ContactID:   10,
		WhatsappID:  3,
		Status:      models.TicketStatusPending,
		EntrySource: "lead",
		Protocol:    "proto-uuid",
	}
	require.NoError(t, repo.Create(context.Background(), ticket))
	assert.Equal(t, uint(15), ticket.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketAttachTagIdempotent(t *testing.T) {
	repo, mock := newTicketMock(t)

	mock.ExpectExec(`INSERT INTO ticket_tags .+ON CONFLICT \(ticket_id, tag_id\) DO NOTHING`).
		WithArgs(15, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.AttachTag(context.Background(), 15, 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketCloseStalePending(t *testing.T) {
	repo, mock := newTicketMock(t)

	mock.ExpectExec(`UPDATE tickets SET status = \$1, change_time = \$2\s+WHERE status = \$3 AND change_time < \$4`).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.CloseStalePending(context.Background(), time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestTicketAppendAndListAccessLog(t *testing.T) {
	repo, mock := newTicketMock(t)

	mock.ExpectExec(`INSERT INTO ticket_access_logs`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.AppendAccessLog(context.Background(), 15, 5, models.AccessLogTypeAccess))

	now := time.Now()
	mock.ExpectQuery(`SELECT id, ticket_id, user_id, type, create_time\s+FROM ticket_access_logs`).
		WithArgs(15).
		WillReturnRows(sqlmock.NewRows([]string{"id", "ticket_id", "user_id", "type", "create_time"}).
			AddRow(1, 15, 5, "access", now))

	entries, err := repo.ListAccessLog(context.Background(), 15)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint(5), entries[0].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
