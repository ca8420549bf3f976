package database

import (
	"testing"

	"go.uber.org/zap"

	"usercms/internal/model"
	"usercms/internal/utils"
)

// openTestStore opens a shared-cache in-memory SQLite database. Each
// test uses its own name so state does not leak between tests.
func openTestStore(t *testing.T, name string) *Store {
	t.Helper()
	s, err := OpenSQLite("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestEnsureSchemaAndSeed_FirstBoot(t *testing.T) {
	s := openTestStore(t, "firstboot")
	if err := s.EnsureSchema(); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	s.SeedDefaults(4, zap.NewNop())

	rows, err := s.DB.Query(`SELECT id, name FROM roles ORDER BY id ASC`)
	if err != nil {
		t.Fatalf("query roles: %v", err)
	}
	defer rows.Close()

	want := []string{"admin", "manager", "editor", "viewer"}
	i := 0
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			t.Fatalf("scan: %v", err)
		}
		if i >= len(want) {
			t.Fatalf("more than %d seeded roles", len(want))
		}
		if id != int64(i+1) || name != want[i] {
			t.Fatalf("role %d: got id=%d name=%q, want id=%d name=%q", i, id, name, i+1, want[i])
		}
		i++
	}
	if i != len(want) {
		t.Fatalf("seeded %d roles, want %d", i, len(want))
	}

	var count int
	var username string
	var roleID int64
	if err := s.DB.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 1 {
		t.Fatalf("seeded %d users, want 1", count)
	}
	var hash string
	if err := s.DB.QueryRow(`SELECT username, role_id, password_hash FROM users`).Scan(&username, &roleID, &hash); err != nil {
		t.Fatalf("query admin: %v", err)
	}
	if username != "admin" || roleID != model.AdminRoleID {
		t.Fatalf("admin account: got username=%q role_id=%d", username, roleID)
	}
	if !utils.VerifyPassword(hash, "admin") {
		t.Fatal("seeded admin password should verify as admin")
	}
}

func TestSeedDefaults_Idempotent(t *testing.T) {
	s := openTestStore(t, "idempotent")
	if err := s.EnsureSchema(); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	s.SeedDefaults(4, zap.NewNop())

	// A second boot must change nothing.
	if err := s.EnsureSchema(); err != nil {
		t.Fatalf("ensure schema again: %v", err)
	}
	s.SeedDefaults(4, zap.NewNop())

	var roles, users int
	if err := s.DB.QueryRow(`SELECT COUNT(*) FROM roles`).Scan(&roles); err != nil {
		t.Fatalf("count roles: %v", err)
	}
	if err := s.DB.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&users); err != nil {
		t.Fatalf("count users: %v", err)
	}
	if roles != 4 || users != 1 {
		t.Fatalf("after reseed: %d roles, %d users; want 4 and 1", roles, users)
	}
}

func TestEnsureSchema_LegacyUsersTable(t *testing.T) {
	s := openTestStore(t, "legacy")

	// A pre-roles database: users without a role_id column.
	_, err := s.DB.Exec(`CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		address TEXT,
		phone TEXT,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create legacy table: %v", err)
	}
	if _, err := s.DB.Exec(
		`INSERT INTO users (first_name, last_name, email, username, password_hash)
		 VALUES ('Old', 'Timer', 'old@example.com', 'oldtimer', 'x')`); err != nil {
		t.Fatalf("insert legacy row: %v", err)
	}

	if err := s.EnsureSchema(); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	// The existing row must survive and pick up the admin role default.
	var roleID int64
	if err := s.DB.QueryRow(`SELECT role_id FROM users WHERE username = 'oldtimer'`).Scan(&roleID); err != nil {
		t.Fatalf("query migrated row: %v", err)
	}
	if roleID != model.AdminRoleID {
		t.Fatalf("migrated role_id = %d, want %d", roleID, model.AdminRoleID)
	}
}
