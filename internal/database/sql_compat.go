package database

import (
	"os"
	"regexp"
	"strings"
	"sync"
)

var (
	driverMu sync.RWMutex
	driver   string
)

// SetDriver records the active database driver. Connect calls this; tests
// may call it directly.
func SetDriver(name string) {
	driverMu.Lock()
	driver = strings.ToLower(name)
	driverMu.Unlock()
}

// Driver returns the active database driver, falling back to the DB_DRIVER
// environment variable and then to postgres.
func Driver() string {
	driverMu.RLock()
	d := driver
	driverMu.RUnlock()
	if d != "" {
		return d
	}
	if env := os.Getenv("DB_DRIVER"); env != "" {
		return strings.ToLower(env)
	}
	return "postgres"
}

// IsMySQL returns true if using MySQL/MariaDB.
func IsMySQL() bool {
	d := Driver()
	return d == "mysql" || d == "mariadb"
}

// IsPostgreSQL returns true if using PostgreSQL.
func IsPostgreSQL() bool {
	return Driver() == "postgres"
}

var placeholderRe = regexp.MustCompile(`\$\d+`)

// ConvertPlaceholders converts PostgreSQL placeholders ($1, $2) to MySQL
// placeholders (?). Queries are written in PostgreSQL form and converted
// when MySQL is active.
func ConvertPlaceholders(query string) string {
	if !IsMySQL() {
		return query
	}
	result := query
	for _, placeholder := range placeholderRe.FindAllString(query, -1) {
		result = strings.Replace(result, placeholder, "?", 1)
	}
	// MySQL collations are case-insensitive by default.
	result = strings.ReplaceAll(result, " ILIKE ", " LIKE ")
	return result
}
