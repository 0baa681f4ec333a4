package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/iliyamo/projectdesk/internal/model"
)

const menuColumns = "m.id, m.parent_id, m.display_name, m.order_number, m.action_code, m.visible"

// MenuRepo reads the menu catalog.  Ordering is applied by the caller.
type MenuRepo struct{ DB *sql.DB }

func NewMenuRepo(db *sql.DB) *MenuRepo { return &MenuRepo{DB: db} }

// ListForHandle returns the visible menu entries granted to the role that
// the user with the given handle is linked to.
func (r *MenuRepo) ListForHandle(ctx context.Context, handle string) ([]model.MenuEntry, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT `+menuColumns+`
FROM users u
JOIN role_user_link l ON l.user_id = u.id
JOIN roles ro ON ro.id = l.role_id
JOIN permissions p ON p.role_id = ro.id
JOIN menu m ON m.id = p.menu_id
WHERE u.handle = ? AND m.visible = 1`, handle)
	if err != nil {
		return nil, errors.Wrap(err, "menu for handle")
	}
	return scanMenu(rows)
}

// ListCatalog returns every menu entry regardless of permissions.
func (r *MenuRepo) ListCatalog(ctx context.Context) ([]model.MenuEntry, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+menuColumns+" FROM menu m")
	if err != nil {
		return nil, errors.Wrap(err, "menu catalog")
	}
	return scanMenu(rows)
}

// missingMenuIDs returns the ids from ids that have no menu row.
func missingMenuIDs(ctx context.Context, q querier, ids []uint64) ([]uint64, error) {
	var missing []uint64
	for _, id := range ids {
		var n int
		if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM menu WHERE id=?", id).Scan(&n); err != nil {
			return nil, errors.Wrap(err, "check menu")
		}
		if n == 0 {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func scanMenu(rows *sql.Rows) ([]model.MenuEntry, error) {
	defer rows.Close()
	out := []model.MenuEntry{}
	for rows.Next() {
		var m model.MenuEntry
		if err := rows.Scan(&m.ID, &m.ParentID, &m.DisplayName, &m.OrderNumber, &m.ActionCode, &m.Visible); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
