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

func newContactMock(t *testing.T) (*SQLContactRepository, sqlmock.Sqlmock) {
	t.Helper()
	database.SetDriver("postgres")
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewContactRepository(db), mock
}

func contactRows(id uint, canonical string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "tenant_id", "name", "number", "canonical_number", "email",
		"company_name", "is_group", "active", "blocked", "create_time", "change_time",
	}).AddRow(id, 1, "Maria", "(14) 98125-2988", canonical, "", nil, false, true, false, now, now)
}

func TestContactFindByNumberMatchesCanonicalOrLegacy(t *testing.T) {
	repo, mock := newContactMock(t)

	mock.ExpectQuery(`SELECT .+ FROM contacts\s+WHERE tenant_id = \$1\s+AND \(canonical_number = \$2 OR number = \$3 OR number = \$4\)\s+ORDER BY canonical_number = \$5 DESC, id ASC\s+LIMIT 1`).
		WithArgs(1, "5514981252988", "5514981252988", "(14) 98125-2988", "5514981252988").
		WillReturnRows(contactRows(9, "5514981252988"))

	contact, err := repo.FindByNumber(context.Background(), 1, "5514981252988", "(14) 98125-2988")
	require.NoError(t, err)
	require.NotNil(t, contact)
	assert.Equal(t, uint(9), contact.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactFindByNumberNone(t *testing.T) {
	repo, mock := newContactMock(t)

	mock.ExpectQuery(`SELECT .+ FROM contacts`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	contact, err := repo.FindByNumber(context.Background(), 1, "5514981252988", "x")
	require.NoError(t, err)
	assert.Nil(t, contact)
}

func TestContactCreatePostgres(t *testing.T) {
	repo, mock := newContactMock(t)

	mock.ExpectQuery(`INSERT INTO contacts .+RETURNING id`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(21))

	canonical := "5514981252988"
	contact := &models.Contact{TenantID: 1, Name: "Maria", CanonicalNumber: &canonical, Active: true}
	require.NoError(t, repo.Create(context.Background(), contact))
	assert.Equal(t, uint(21), contact.ID)
}

func TestContactGetByIDNotFound(t *testing.T) {
	repo, mock := newContactMock(t)

	mock.ExpectQuery(`SELECT .+ FROM contacts WHERE id = \$1 AND tenant_id = \$2`).
		WithArgs(5, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), 1, 5)
	assert.ErrorIs(t, err, models.ErrContactNotFound)
}

func TestContactGetTags(t *testing.T) {
	repo, mock := newContactMock(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT t.id, t.tenant_id, t.name, t.color, t.kanban, t.create_time, t.change_time\s+FROM tags t\s+JOIN contact_tags ct ON ct.tag_id = t.id`).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name", "color", "kanban", "create_time", "change_time"}).
			AddRow(1, 1, "#mine", "#FF0000", 0, now, now).
			AddRow(2, 1, "##deptA", "#00FF00", 0, now, now))

	tags, err := repo.GetTags(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "#mine", tags[0].Name)
}

func TestContactSetCustomFields(t *testing.T) {
	repo, mock := newContactMock(t)

	mock.ExpectExec(`INSERT INTO contact_custom_fields \(contact_id, name, value\) VALUES \(\$1, \$2, \$3\)\s+ON CONFLICT \(contact_id, name\) DO UPDATE SET value = EXCLUDED.value`).
		WithArgs(9, "origem", "lead").
		WillReturnResult(sqlmock.NewResult(1, 1))

	fields := []models.ContactCustomField{{Name: "origem", Value: "lead"}}
	require.NoError(t, repo.SetCustomFields(context.Background(), 9, fields))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemorySetCustomFieldsPreservesOtherKeys(t *testing.T) {
	repo := NewMemoryContactRepository()
	ctx := context.Background()

	require.NoError(t, repo.SetCustomFields(ctx, 9, []models.ContactCustomField{
		{Name: "cpf", Value: "123"},
		{Name: "origem", Value: "site_chat"},
	}))
	require.NoError(t, repo.SetCustomFields(ctx, 9, []models.ContactCustomField{
		{Name: "origem", Value: "lead"},
	}))

	fields := repo.CustomFields(9)
	require.Len(t, fields, 2)
	assert.Equal(t, "cpf", fields[0].Name)
	assert.Equal(t, "123", fields[0].Value, "unrelated key must survive a resubmission")
	assert.Equal(t, "lead", fields[1].Value, "named key takes the new value")
}

func TestTrimReturning(t *testing.T) {
	assert.Equal(t, "INSERT INTO x (a) VALUES ($1) ", trimReturning("INSERT INTO x (a) VALUES ($1) RETURNING id"))
	assert.Equal(t, "SELECT 1", trimReturning("SELECT 1"))
}
