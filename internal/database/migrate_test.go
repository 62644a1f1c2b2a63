package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func indexStatements(stmts []string) []string {
	var out []string
	for _, s := range stmts {
		if strings.HasPrefix(s, "CREATE INDEX") || strings.HasPrefix(s, "CREATE UNIQUE INDEX") {
			out = append(out, s)
		}
	}
	return out
}

func TestSchemaStatementsPostgresIndexes(t *testing.T) {
	SetDriver("postgres")

	idx := indexStatements(schemaStatements())
	assert.NotEmpty(t, idx)
	for _, s := range idx {
		assert.Contains(t, s, "IF NOT EXISTS", s)
	}
}

func TestSchemaStatementsMySQLIndexes(t *testing.T) {
	SetDriver("mysql")
	defer SetDriver("postgres")

	// MySQL before 8.0.13 rejects IF NOT EXISTS on CREATE INDEX.
	idx := indexStatements(schemaStatements())
	assert.NotEmpty(t, idx)
	for _, s := range idx {
		assert.NotContains(t, s, "IF NOT EXISTS", s)
	}
}

func TestSchemaCoversCustomFieldUpsert(t *testing.T) {
	SetDriver("postgres")

	var found bool
	for _, s := range schemaStatements() {
		if strings.Contains(s, "idx_contact_fields") {
			found = true
			assert.Contains(t, s, "UNIQUE")
			assert.Contains(t, s, "(contact_id, name)")
		}
	}
	assert.True(t, found, "custom field upserts rely on a unique (contact_id, name) index")
}
