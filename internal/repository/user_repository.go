package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/iliyamo/projectdesk/internal/database"
	"github.com/iliyamo/projectdesk/internal/model"
)

// querier is satisfied by both *sql.DB and *sql.Tx so lookups can run
// inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const userColumns = "id, name, surname, handle, password_hash, status, role_id, created_at"

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// CreateWithLink inserts the user and its role_user_link row in one
// transaction and sets u.ID.  It fails with ErrHandleExists when the handle
// is taken and ErrRoleNotFound when u.RoleID does not exist.
func (r *UserRepo) CreateWithLink(ctx context.Context, u *model.User) error {
	u.Handle = strings.TrimSpace(u.Handle)
	return database.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		taken, err := handleTaken(ctx, tx, u.Handle, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrHandleExists
		}
		ok, err := roleExists(ctx, tx, u.RoleID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrRoleNotFound
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO users (name, surname, handle, password_hash, status, role_id) VALUES (?,?,?,?,?,?)",
			u.Name, u.Surname, u.Handle, u.PasswordHash, model.StatusActive, u.RoleID)
		if err != nil {
			if isDuplicate(err) {
				return ErrHandleExists
			}
			return errors.Wrap(err, "insert user")
		}
		id, err := res.LastInsertId()
		if err != nil {
			return errors.Wrap(err, "user id")
		}
		u.ID = uint64(id)
		u.Status = model.StatusActive
		return writeLink(ctx, tx, model.RoleUserLink{UserID: u.ID, Handle: u.Handle, RoleID: u.RoleID})
	})
}

// GetByHandle fetches a user by login handle.  It returns ErrUserNotFound
// when no row matches.
func (r *UserRepo) GetByHandle(ctx context.Context, handle string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE handle=? LIMIT 1", strings.TrimSpace(handle)))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// List returns users newest first, optionally filtered by a substring of
// the handle.
func (r *UserRepo) List(ctx context.Context, search string) ([]model.User, error) {
	q := "SELECT " + userColumns + " FROM users"
	var args []any
	if s := strings.TrimSpace(search); s != "" {
		q += " WHERE handle LIKE ?"
		args = append(args, "%"+s+"%")
	}
	q += " ORDER BY id DESC"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	defer rows.Close()
	out := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Surname, &u.Handle, &u.PasswordHash, &u.Status, &u.RoleID, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Update rewrites the user's attributes and its role link together.  An
// empty PasswordHash keeps the stored hash.
func (r *UserRepo) Update(ctx context.Context, u model.User) error {
	u.Handle = strings.TrimSpace(u.Handle)
	return database.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE id=?", u.ID).Scan(&exists)
		if err != nil {
			return err
		}
		if exists == 0 {
			return ErrUserNotFound
		}
		taken, err := handleTaken(ctx, tx, u.Handle, u.ID)
		if err != nil {
			return err
		}
		if taken {
			return ErrHandleExists
		}
		ok, err := roleExists(ctx, tx, u.RoleID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrRoleNotFound
		}
		if u.PasswordHash == "" {
			_, err = tx.ExecContext(ctx,
				"UPDATE users SET name=?, surname=?, handle=?, status=?, role_id=? WHERE id=?",
				u.Name, u.Surname, u.Handle, u.Status, u.RoleID, u.ID)
		} else {
			_, err = tx.ExecContext(ctx,
				"UPDATE users SET name=?, surname=?, handle=?, password_hash=?, status=?, role_id=? WHERE id=?",
				u.Name, u.Surname, u.Handle, u.PasswordHash, u.Status, u.RoleID, u.ID)
		}
		if err != nil {
			if isDuplicate(err) {
				return ErrHandleExists
			}
			return errors.Wrap(err, "update user")
		}
		return writeLink(ctx, tx, model.RoleUserLink{UserID: u.ID, Handle: u.Handle, RoleID: u.RoleID})
	})
}

// ToggleStatus flips the status flag between active and inactive and
// returns the new value.
func (r *UserRepo) ToggleStatus(ctx context.Context, id uint64) (int, error) {
	var next int
	err := database.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		var cur int
		if err := tx.QueryRowContext(ctx, "SELECT status FROM users WHERE id=?", id).Scan(&cur); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrUserNotFound
			}
			return err
		}
		next = model.StatusActive
		if cur == model.StatusActive {
			next = model.StatusInactive
		}
		_, err := tx.ExecContext(ctx, "UPDATE users SET status=? WHERE id=?", next, id)
		return err
	})
	return next, err
}

// Delete removes the user and its role link.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	return database.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM role_user_link WHERE user_id=?", id); err != nil {
			return errors.Wrap(err, "delete role link")
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
		if err != nil {
			return errors.Wrap(err, "delete user")
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

// writeLink replaces the role link of a user.  Delete-then-insert avoids
// relying on MySQL's changed-rows semantics for UPDATE.
func writeLink(ctx context.Context, q querier, l model.RoleUserLink) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM role_user_link WHERE user_id=?", l.UserID); err != nil {
		return errors.Wrap(err, "clear role link")
	}
	if _, err := q.ExecContext(ctx,
		"INSERT INTO role_user_link (user_id, handle, role_id) VALUES (?,?,?)",
		l.UserID, l.Handle, l.RoleID); err != nil {
		if isDuplicate(err) {
			return ErrHandleExists
		}
		return errors.Wrap(err, "insert role link")
	}
	return nil
}

// handleTaken reports whether a user other than exceptID owns handle.
func handleTaken(ctx context.Context, q querier, handle string, exceptID uint64) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE handle=? AND id<>?", handle, exceptID).Scan(&n)
	return n > 0, err
}

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Surname, &u.Handle, &u.PasswordHash, &u.Status, &u.RoleID, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}
