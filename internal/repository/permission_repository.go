package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"

	"github.com/iliyamo/projectdesk/internal/database"
	"github.com/iliyamo/projectdesk/internal/model"
)

// UnknownMenuError lists menu ids that do not exist in the catalog.
type UnknownMenuError struct{ IDs []uint64 }

func (e *UnknownMenuError) Error() string {
	return fmt.Sprintf("unknown menu ids %v", e.IDs)
}

func (e *UnknownMenuError) Is(target error) bool { return target == ErrMenuNotFound }

// PermissionRepo reads and replaces role -> menu grants.
type PermissionRepo struct{ DB *sql.DB }

func NewPermissionRepo(db *sql.DB) *PermissionRepo { return &PermissionRepo{DB: db} }

// ListForRole returns the menu entries granted to a role ordered by menu id.
// It returns ErrRoleNotFound for an unknown role.
func (r *PermissionRepo) ListForRole(ctx context.Context, roleID uint64) ([]model.MenuEntry, error) {
	ok, err := roleExists(ctx, r.DB, roleID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRoleNotFound
	}
	rows, err := r.DB.QueryContext(ctx, `
SELECT `+menuColumns+`
FROM permissions p
JOIN menu m ON m.id = p.menu_id
WHERE p.role_id = ?
ORDER BY m.id`, roleID)
	if err != nil {
		return nil, errors.Wrap(err, "list permissions")
	}
	return scanMenu(rows)
}

// Replace swaps the full permission set of a role for menuIDs in one
// transaction.  Duplicate ids are stored once.  Either the old set or the
// new set is visible afterwards, never a mix.
func (r *PermissionRepo) Replace(ctx context.Context, roleID uint64, menuIDs []uint64) error {
	ids := dedupe(menuIDs)
	return database.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		ok, err := roleExists(ctx, tx, roleID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrRoleNotFound
		}
		missing, err := missingMenuIDs(ctx, tx, ids)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return &UnknownMenuError{IDs: missing}
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM permissions WHERE role_id=?", roleID); err != nil {
			return errors.Wrap(err, "clear permissions")
		}
		for _, id := range ids {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO permissions (role_id, menu_id) VALUES (?,?)", roleID, id); err != nil {
				return errors.Wrapf(err, "grant menu %d", id)
			}
		}
		return nil
	})
}

func dedupe(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
