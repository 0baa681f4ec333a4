package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/iliyamo/projectdesk/internal/database"
	"github.com/iliyamo/projectdesk/internal/model"
)

// NavigationRepo stores role-owned navigation links.  URLs are unique.
type NavigationRepo struct{ DB *sql.DB }

func NewNavigationRepo(db *sql.DB) *NavigationRepo { return &NavigationRepo{DB: db} }

// Create checks url uniqueness and the owning role, then inserts the link.
func (r *NavigationRepo) Create(ctx context.Context, l *model.NavigationLink) error {
	l.URL = strings.TrimSpace(l.URL)
	return database.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		if err := checkLink(ctx, tx, *l); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO navigation (link_name, url, role_id) VALUES (?,?,?)",
			l.LinkName, l.URL, l.RoleID)
		if err != nil {
			if isDuplicate(err) {
				return ErrURLExists
			}
			return errors.Wrap(err, "insert navigation")
		}
		id, err := res.LastInsertId()
		if err != nil {
			return errors.Wrap(err, "navigation id")
		}
		l.ID = uint64(id)
		return nil
	})
}

// Update rewrites an existing link.
func (r *NavigationRepo) Update(ctx context.Context, l model.NavigationLink) error {
	l.URL = strings.TrimSpace(l.URL)
	return database.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM navigation WHERE id=?", l.ID).Scan(&n); err != nil {
			return err
		}
		if n == 0 {
			return ErrNavigationNotFound
		}
		if err := checkLink(ctx, tx, l); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			"UPDATE navigation SET link_name=?, url=?, role_id=? WHERE id=?",
			l.LinkName, l.URL, l.RoleID, l.ID)
		if isDuplicate(err) {
			return ErrURLExists
		}
		return errors.Wrap(err, "update navigation")
	})
}

// List returns links ordered by id, optionally filtered by a link name
// substring.
func (r *NavigationRepo) List(ctx context.Context, search string) ([]model.NavigationLink, error) {
	q := "SELECT id, link_name, url, role_id FROM navigation"
	var args []any
	if s := strings.TrimSpace(search); s != "" {
		q += " WHERE link_name LIKE ?"
		args = append(args, "%"+s+"%")
	}
	q += " ORDER BY id"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list navigation")
	}
	defer rows.Close()
	out := []model.NavigationLink{}
	for rows.Next() {
		var l model.NavigationLink
		if err := rows.Scan(&l.ID, &l.LinkName, &l.URL, &l.RoleID); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *NavigationRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM navigation WHERE id=?", id)
	if err != nil {
		return errors.Wrap(err, "delete navigation")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNavigationNotFound
	}
	return nil
}

// checkLink enforces the url uniqueness and role existence preconditions.
func checkLink(ctx context.Context, q querier, l model.NavigationLink) error {
	var n int
	if err := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM navigation WHERE url=? AND id<>?", l.URL, l.ID).Scan(&n); err != nil {
		return errors.Wrap(err, "check url")
	}
	if n > 0 {
		return ErrURLExists
	}
	ok, err := roleExists(ctx, q, l.RoleID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrRoleNotFound
	}
	return nil
}
