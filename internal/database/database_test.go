package database_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/projectdesk/internal/database"
	"github.com/iliyamo/projectdesk/internal/database/dbtest"
)

func TestDSN(t *testing.T) {
	mc, err := mysql.ParseDSN(database.DSN("app", "pw", "db", "3306", "desk"))
	require.NoError(t, err)
	assert.Equal(t, "app", mc.User)
	assert.Equal(t, "pw", mc.Passwd)
	assert.Equal(t, "db:3306", mc.Addr)
	assert.Equal(t, "desk", mc.DBName)
	assert.True(t, mc.ParseTime)
	assert.Equal(t, time.UTC, mc.Loc)

	assert.NotContains(t, database.DSN("app", "", "db", "3306", "desk"), "app:")
}

func countRoles(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM roles").Scan(&n))
	return n
}

func TestWithTxCommits(t *testing.T) {
	db := dbtest.Open(t)
	before := countRoles(t, db)

	err := database.WithTx(context.Background(), db, func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO roles (name, description, created_by) VALUES ('ops', '', 'root')")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, before+1, countRoles(t, db))
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db := dbtest.Open(t)
	before := countRoles(t, db)
	boom := errors.New("boom")

	err := database.WithTx(context.Background(), db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO roles (name, description, created_by) VALUES ('ops', '', 'root')"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, before, countRoles(t, db))
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	db := dbtest.Open(t)
	before := countRoles(t, db)

	assert.Panics(t, func() {
		_ = database.WithTx(context.Background(), db, func(tx *sql.Tx) error {
			_, _ = tx.Exec("INSERT INTO roles (name, description, created_by) VALUES ('ops', '', 'root')")
			panic("boom")
		})
	})
	assert.Equal(t, before, countRoles(t, db))
}
