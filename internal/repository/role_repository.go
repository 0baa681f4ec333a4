package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/iliyamo/projectdesk/internal/database"
	"github.com/iliyamo/projectdesk/internal/model"
)

type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// Create inserts a role and sets r.ID.  Names are unique.
func (r *RoleRepo) Create(ctx context.Context, role *model.Role) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO roles (name, description, created_by) VALUES (?,?,?)",
		strings.TrimSpace(role.Name), role.Description, role.CreatedBy)
	if err != nil {
		if isDuplicate(err) {
			return ErrRoleNameExists
		}
		return errors.Wrap(err, "insert role")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "role id")
	}
	role.ID = uint64(id)
	return nil
}

// Update changes name and description of an existing role.
func (r *RoleRepo) Update(ctx context.Context, role model.Role) error {
	return database.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		ok, err := roleExists(ctx, tx, role.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrRoleNotFound
		}
		var clash int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM roles WHERE name=? AND id<>?",
			strings.TrimSpace(role.Name), role.ID).Scan(&clash); err != nil {
			return err
		}
		if clash > 0 {
			return ErrRoleNameExists
		}
		_, err = tx.ExecContext(ctx, "UPDATE roles SET name=?, description=? WHERE id=?",
			strings.TrimSpace(role.Name), role.Description, role.ID)
		if isDuplicate(err) {
			return ErrRoleNameExists
		}
		return errors.Wrap(err, "update role")
	})
}

func (r *RoleRepo) GetByID(ctx context.Context, id uint64) (model.Role, error) {
	var role model.Role
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, description, created_at, created_by FROM roles WHERE id=?", id).
		Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.CreatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Role{}, ErrRoleNotFound
	}
	return role, err
}

// List returns roles newest first, optionally filtered by a name substring.
func (r *RoleRepo) List(ctx context.Context, search string) ([]model.Role, error) {
	q := "SELECT id, name, description, created_at, created_by FROM roles"
	var args []any
	if s := strings.TrimSpace(search); s != "" {
		q += " WHERE name LIKE ?"
		args = append(args, "%"+s+"%")
	}
	q += " ORDER BY id DESC"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list roles")
	}
	defer rows.Close()
	out := []model.Role{}
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.CreatedBy); err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

// Delete removes a role and its permissions.  A role still referenced by a
// user or a navigation link is left untouched and ErrRoleInUse is returned.
func (r *RoleRepo) Delete(ctx context.Context, id uint64) error {
	return database.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		ok, err := roleExists(ctx, tx, id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrRoleNotFound
		}
		var users, links int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE role_id=?", id).Scan(&users); err != nil {
			return errors.Wrap(err, "count role users")
		}
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM navigation WHERE role_id=?", id).Scan(&links); err != nil {
			return errors.Wrap(err, "count role links")
		}
		if users > 0 || links > 0 {
			return ErrRoleInUse
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM permissions WHERE role_id=?", id); err != nil {
			return errors.Wrap(err, "delete role permissions")
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM roles WHERE id=?", id); err != nil {
			return errors.Wrap(err, "delete role")
		}
		return nil
	})
}

func roleExists(ctx context.Context, q querier, id uint64) (bool, error) {
	var n int
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM roles WHERE id=?", id).Scan(&n); err != nil {
		return false, errors.Wrap(err, "check role")
	}
	return n > 0, nil
}
