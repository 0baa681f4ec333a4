// Package dbtest opens throwaway in-memory SQLite databases carrying the same
// tables as the MySQL schema, seeded with a small role and menu catalog.  It
// is imported by tests only.
package dbtest

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// Seeded role ids.
const (
	RoleAdmin   uint64 = 1 // referenced by users in most tests
	RoleMember  uint64 = 2
	RoleAuditor uint64 = 3 // never referenced by a user or navigation link
)

// Seeded menu ids.  Security(1) > Users(2), Roles(3); Projects(4) >
// Milestones(6), My projects(5); Hidden(7) is not user-visible.
const (
	MenuSecurity   uint64 = 1
	MenuUsers      uint64 = 2
	MenuRoles      uint64 = 3
	MenuProjects   uint64 = 4
	MenuMyProjects uint64 = 5
	MenuMilestones uint64 = 6
	MenuHidden     uint64 = 7
)

const schema = `
CREATE TABLE roles (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	created_by  TEXT NOT NULL DEFAULT ''
);
CREATE TABLE users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	name          TEXT NOT NULL,
	surname       TEXT NOT NULL,
	handle        TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	status        INTEGER NOT NULL DEFAULT 1,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	role_id       INTEGER NOT NULL REFERENCES roles(id)
);
CREATE TABLE role_user_link (
	user_id INTEGER PRIMARY KEY REFERENCES users(id),
	handle  TEXT NOT NULL UNIQUE,
	role_id INTEGER NOT NULL REFERENCES roles(id)
);
CREATE TABLE navigation (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	link_name TEXT NOT NULL,
	url       TEXT NOT NULL UNIQUE,
	role_id   INTEGER NOT NULL REFERENCES roles(id)
);
CREATE TABLE menu (
	id           INTEGER PRIMARY KEY,
	parent_id    INTEGER NOT NULL DEFAULT 0,
	display_name TEXT NOT NULL,
	order_number INTEGER NOT NULL DEFAULT 0,
	action_code  INTEGER NOT NULL DEFAULT 0,
	visible      INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE permissions (
	role_id INTEGER NOT NULL REFERENCES roles(id),
	menu_id INTEGER NOT NULL REFERENCES menu(id),
	PRIMARY KEY (role_id, menu_id)
);
`

const seed = `
INSERT INTO roles (id, name, description, created_by) VALUES
	(1, 'admin', 'Administrators', 'system'),
	(2, 'member', 'Project members', 'system'),
	(3, 'auditor', 'Read-only auditors', 'system');
INSERT INTO menu (id, parent_id, display_name, order_number, action_code, visible) VALUES
	(1, 0, 'Security', 1, 0, 1),
	(2, 1, 'Users', 1, 0, 1),
	(3, 1, 'Roles', 2, 1, 1),
	(4, 0, 'Projects', 2, 0, 1),
	(5, 4, 'My projects', 2, 2, 1),
	(6, 4, 'Milestones', 1, 0, 1),
	(7, 0, 'Hidden', 3, 0, 0);
`

// Open returns a fresh seeded database closed automatically when the test
// ends.  The pool is pinned to one connection so every statement sees the
// same in-memory database.
func Open(t testing.TB) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)
	_, err = db.Exec(schema)
	require.NoError(t, err)
	_, err = db.Exec(seed)
	require.NoError(t, err)
	return db
}

// SeedUser inserts an active or inactive user with its role link and
// returns the new id.
func SeedUser(t testing.TB, db *sql.DB, handle, passwordHash string, roleID uint64, active bool) uint64 {
	t.Helper()
	status := 0
	if active {
		status = 1
	}
	res, err := db.Exec(
		"INSERT INTO users (name, surname, handle, password_hash, status, role_id) VALUES (?,?,?,?,?,?)",
		"Test", "User", handle, passwordHash, status, roleID)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO role_user_link (user_id, handle, role_id) VALUES (?,?,?)", id, handle, roleID)
	require.NoError(t, err)
	return uint64(id)
}

// Grant inserts permission rows for a role.
func Grant(t testing.TB, db *sql.DB, roleID uint64, menuIDs ...uint64) {
	t.Helper()
	for _, m := range menuIDs {
		_, err := db.Exec("INSERT INTO permissions (role_id, menu_id) VALUES (?,?)", roleID, m)
		require.NoError(t, err)
	}
}
