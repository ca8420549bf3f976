package database

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"usercms/internal/model"
	"usercms/internal/utils"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS roles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	description TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	address TEXT,
	phone TEXT,
	username TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role_id INTEGER DEFAULT 1,
	FOREIGN KEY (role_id) REFERENCES roles(id)
);`

const mysqlSchema = `
CREATE TABLE IF NOT EXISTS roles (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(100) COLLATE utf8mb4_bin NOT NULL UNIQUE,
	description TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS users (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	first_name VARCHAR(100) NOT NULL,
	last_name VARCHAR(100) NOT NULL,
	email VARCHAR(255) NOT NULL UNIQUE,
	address VARCHAR(255),
	phone VARCHAR(50),
	username VARCHAR(100) NOT NULL UNIQUE,
	password_hash VARCHAR(255) NOT NULL,
	role_id BIGINT DEFAULT 1,
	FOREIGN KEY (role_id) REFERENCES roles(id)
);`

// EnsureSchema creates the roles and users tables when absent and brings
// a legacy users table (one without a role_id column) up to the current
// layout. It is safe to call on every start.
func (s *Store) EnsureSchema() error {
	schema := sqliteSchema
	if s.Driver == DriverMySQL {
		schema = mysqlSchema
	}
	// MySQL rejects multi-statement Exec by default; run one at a time.
	for _, stmt := range splitStatements(schema) {
		if _, err := s.DB.Exec(stmt); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}

	hasRoleID, err := s.hasColumn("users", "role_id")
	if err != nil {
		return fmt.Errorf("inspect users table: %w", err)
	}
	if !hasRoleID {
		// A pre-roles database: attach every existing account to the
		// admin role without disturbing the rows themselves.
		alter := fmt.Sprintf("ALTER TABLE users ADD COLUMN role_id INTEGER DEFAULT %d", model.AdminRoleID)
		if s.Driver == DriverMySQL {
			alter = fmt.Sprintf("ALTER TABLE users ADD COLUMN role_id BIGINT DEFAULT %d", model.AdminRoleID)
		}
		if _, err := s.DB.Exec(alter); err != nil {
			return fmt.Errorf("add role_id column: %w", err)
		}
	}
	return nil
}

// SeedDefaults inserts the default roles and the initial administrator
// account, each guarded by a row count so re-running against a populated
// database is a no-op. A failure in one step is logged and does not stop
// the others; the caller keeps booting either way.
func (s *Store) SeedDefaults(bcryptCost int, logger *zap.Logger) {
	if err := s.seedRoles(); err != nil {
		logger.Error("seeding default roles failed", zap.Error(err))
	}
	if err := s.seedAdminUser(bcryptCost); err != nil {
		logger.Error("seeding admin user failed", zap.Error(err))
	}
}

func (s *Store) seedRoles() error {
	var count int
	if err := s.DB.QueryRow(`SELECT COUNT(*) FROM roles`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, r := range model.DefaultRoles {
		if _, err := s.DB.Exec(
			`INSERT INTO roles (name, description, created_at, updated_at) VALUES (?,?,?,?)`,
			r.Name, r.Description, now, now); err != nil {
			return fmt.Errorf("insert role %q: %w", r.Name, err)
		}
	}
	return nil
}

func (s *Store) seedAdminUser(bcryptCost int) error {
	var count int
	if err := s.DB.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword("admin", bcryptCost)
	if err != nil {
		return err
	}
	roleID := model.AdminRoleID
	// Prefer resolving the admin role by name over trusting the ordinal.
	var id int64
	if err := s.DB.QueryRow(`SELECT id FROM roles WHERE name = ?`, "admin").Scan(&id); err == nil {
		roleID = id
	}

	_, err = s.DB.Exec(
		`INSERT INTO users (first_name, last_name, email, address, phone, username, password_hash, role_id)
		 VALUES (?,?,?,?,?,?,?,?)`,
		"Admin", "User", "admin@example.com", "Admin Street 1", "0000000000", "admin", hash, roleID)
	return err
}

func (s *Store) hasColumn(table, column string) (bool, error) {
	if s.Driver == DriverMySQL {
		var n int
		err := s.DB.QueryRow(
			`SELECT COUNT(*) FROM information_schema.columns
			 WHERE table_schema = DATABASE() AND table_name = ? AND column_name = ?`,
			table, column).Scan(&n)
		return n > 0, err
	}

	rows, err := s.DB.Query(fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return false, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    any
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

func splitStatements(schema string) []string {
	var out []string
	for _, stmt := range strings.Split(schema, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
