package database

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
)

// Migrate applies the schema. Statements are written for PostgreSQL and
// rewritten for MySQL where the dialects differ.
func Migrate(db *sql.DB) error {
	for _, stmt := range schemaStatements() {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w (statement: %.60s...)", err, stmt)
		}
	}
	log.Printf("database schema up to date (%d statements)", len(schemaStatements()))
	return nil
}

func schemaStatements() []string {
	serial := "BIGSERIAL PRIMARY KEY"
	boolType := "BOOLEAN"
	now := "NOW()"
	if IsMySQL() {
		serial = "BIGINT AUTO_INCREMENT PRIMARY KEY"
		boolType = "TINYINT(1)"
		now = "CURRENT_TIMESTAMP"
	}

	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS contacts (
			id %s,
			tenant_id BIGINT NOT NULL,
			name VARCHAR(255) NOT NULL DEFAULT '',
			number VARCHAR(64),
			canonical_number VARCHAR(64),
			email VARCHAR(255),
			company_name VARCHAR(255),
			is_group %s NOT NULL DEFAULT FALSE,
			active %s NOT NULL DEFAULT TRUE,
			blocked %s NOT NULL DEFAULT FALSE,
			create_time TIMESTAMP NOT NULL DEFAULT %s,
			change_time TIMESTAMP NOT NULL DEFAULT %s
		)`, serial, boolType, boolType, boolType, now, now),
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_contacts_tenant_canonical
			ON contacts (tenant_id, canonical_number)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS contact_custom_fields (
			id %s,
			contact_id BIGINT NOT NULL,
			name VARCHAR(255) NOT NULL,
			value TEXT NOT NULL
		)`, serial),
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_contact_fields
			ON contact_custom_fields (contact_id, name)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS tags (
			id %s,
			tenant_id BIGINT NOT NULL,
			name VARCHAR(255) NOT NULL,
			color VARCHAR(16) NOT NULL DEFAULT '',
			kanban INT NOT NULL DEFAULT 0,
			create_time TIMESTAMP NOT NULL DEFAULT %s,
			change_time TIMESTAMP NOT NULL DEFAULT %s
		)`, serial, now, now),
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_tags_tenant_name ON tags (tenant_id, name)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS contact_tags (
			id %s,
			contact_id BIGINT NOT NULL,
			tag_id BIGINT NOT NULL
		)`, serial),
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_contact_tags ON contact_tags (contact_id, tag_id)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS queues (
			id %s,
			tenant_id BIGINT NOT NULL,
			name VARCHAR(255) NOT NULL,
			color VARCHAR(16) NOT NULL DEFAULT '',
			create_time TIMESTAMP NOT NULL DEFAULT %s,
			change_time TIMESTAMP NOT NULL DEFAULT %s
		)`, serial, now, now),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS whatsapps (
			id %s,
			tenant_id BIGINT NOT NULL,
			name VARCHAR(255) NOT NULL,
			status VARCHAR(32) NOT NULL DEFAULT 'DISCONNECTED',
			is_default %s NOT NULL DEFAULT FALSE,
			create_time TIMESTAMP NOT NULL DEFAULT %s,
			change_time TIMESTAMP NOT NULL DEFAULT %s
		)`, serial, boolType, now, now),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS users (
			id %s,
			tenant_id BIGINT NOT NULL,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			password_hash VARCHAR(255) NOT NULL DEFAULT '',
			profile VARCHAR(32) NOT NULL DEFAULT 'user',
			create_time TIMESTAMP NOT NULL DEFAULT %s,
			change_time TIMESTAMP NOT NULL DEFAULT %s
		)`, serial, now, now),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS user_contact_tags (
			id %s,
			user_id BIGINT NOT NULL,
			tag_id BIGINT NOT NULL
		)`, serial),
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_user_contact_tags ON user_contact_tags (user_id, tag_id)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS tickets (
			id %s,
			tenant_id BIGINT NOT NULL,
			contact_id BIGINT NOT NULL,
			whatsapp_id BIGINT NOT NULL,
			queue_id BIGINT,
			user_id BIGINT,
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			entry_source VARCHAR(32) NOT NULL DEFAULT 'whatsapp',
			unread_messages INT NOT NULL DEFAULT 0,
			last_message VARCHAR(1024) NOT NULL DEFAULT '',
			protocol VARCHAR(64) NOT NULL,
			is_group %s NOT NULL DEFAULT FALSE,
			create_time TIMESTAMP NOT NULL DEFAULT %s,
			change_time TIMESTAMP NOT NULL DEFAULT %s
		)`, serial, boolType, now, now),
		`CREATE INDEX IF NOT EXISTS idx_tickets_match
			ON tickets (tenant_id, contact_id, whatsapp_id, entry_source, status)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_tickets_protocol ON tickets (protocol)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS ticket_tags (
			id %s,
			ticket_id BIGINT NOT NULL,
			tag_id BIGINT NOT NULL
		)`, serial),
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_ticket_tags ON ticket_tags (ticket_id, tag_id)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS messages (
			id %s,
			ticket_id BIGINT NOT NULL,
			contact_id BIGINT,
			body TEXT NOT NULL,
			from_me %s NOT NULL DEFAULT FALSE,
			remote_jid VARCHAR(128),
			participant VARCHAR(128),
			is_private %s NOT NULL DEFAULT FALSE,
			media_type VARCHAR(32) NOT NULL DEFAULT 'chat',
			ack INT NOT NULL DEFAULT 0,
			create_time TIMESTAMP NOT NULL DEFAULT %s
		)`, serial, boolType, boolType, now),
		`CREATE INDEX IF NOT EXISTS idx_messages_ticket ON messages (ticket_id, create_time)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS channel_entry_configs (
			id %s,
			tenant_id BIGINT NOT NULL,
			entry_source VARCHAR(32) NOT NULL,
			queue_id BIGINT,
			tag_id BIGINT,
			whatsapp_id BIGINT,
			welcome_message TEXT,
			create_time TIMESTAMP NOT NULL DEFAULT %s,
			change_time TIMESTAMP NOT NULL DEFAULT %s
		)`, serial, now, now),
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_entry_configs_tenant_source
			ON channel_entry_configs (tenant_id, entry_source)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS ticket_access_logs (
			id %s,
			ticket_id BIGINT NOT NULL,
			user_id BIGINT NOT NULL,
			type VARCHAR(32) NOT NULL DEFAULT 'access',
			create_time TIMESTAMP NOT NULL DEFAULT %s
		)`, serial, now),
		`CREATE INDEX IF NOT EXISTS idx_access_logs_ticket ON ticket_access_logs (ticket_id)`,
	}

	// MySQL (<8.0.13) has no IF NOT EXISTS for CREATE INDEX; creation errors
	// on an existing index are not worth special casing here because MySQL
	// deployments run migrations once at install time.
	if IsMySQL() {
		for i, s := range stmts {
			if strings.HasPrefix(s, "CREATE UNIQUE INDEX IF NOT EXISTS") {
				stmts[i] = strings.Replace(s, "CREATE UNIQUE INDEX IF NOT EXISTS", "CREATE UNIQUE INDEX", 1)
			} else if strings.HasPrefix(s, "CREATE INDEX IF NOT EXISTS") {
				stmts[i] = strings.Replace(s, "CREATE INDEX IF NOT EXISTS", "CREATE INDEX", 1)
			}
		}
	}
	return stmts
}
