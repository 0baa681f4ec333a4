package service

import (
	"context"
	"sort"

	"github.com/iliyamo/projectdesk/internal/model"
)

// MenuStore reads menu entries.  Results may come back in any order.
type MenuStore interface {
	ListForHandle(ctx context.Context, handle string) ([]model.MenuEntry, error)
	ListCatalog(ctx context.Context) ([]model.MenuEntry, error)
}

// MenuResolver builds the ordered menu a user may see and the classified
// catalog view.
type MenuResolver struct {
	Menus MenuStore
	// SubSubmenuActions are the action codes that tag a child entry as
	// "Sub-submenu" in the catalog.
	SubSubmenuActions []int
}

// Resolve returns the visible entries permitted to handle, each top-level
// entry followed by its own children.  An empty result is ErrNoMenuFound.
func (r *MenuResolver) Resolve(ctx context.Context, handle string) ([]model.MenuEntry, error) {
	entries, err := r.Menus.ListForHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNoMenuFound
	}
	SortMenu(entries)
	return entries, nil
}

// Catalog classifies every menu entry, ignoring permissions and visibility.
func (r *MenuResolver) Catalog(ctx context.Context) ([]model.CatalogEntry, error) {
	entries, err := r.Menus.ListCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNoMenuFound
	}
	SortMenu(entries)
	sub := make(map[int]bool, len(r.SubSubmenuActions))
	for _, a := range r.SubSubmenuActions {
		sub[a] = true
	}
	out := make([]model.CatalogEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, model.CatalogEntry{Tag: classify(e, sub), MenuEntry: e})
	}
	return out, nil
}

func classify(e model.MenuEntry, subSubmenu map[int]bool) model.MenuTag {
	switch {
	case e.IsTopLevel():
		return model.TagMenu
	case subSubmenu[e.ActionCode]:
		return model.TagSubSubmenu
	default:
		return model.TagSubmenu
	}
}

// SortMenu orders entries in place by top-level id, then order number, then
// id.  Within a group the top-level entry always sorts first, even when a
// child carries a smaller order number.
func SortMenu(entries []model.MenuEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if ta, tb := a.TopLevelID(), b.TopLevelID(); ta != tb {
			return ta < tb
		}
		if pa, pb := a.IsTopLevel(), b.IsTopLevel(); pa != pb {
			return pa
		}
		if a.OrderNumber != b.OrderNumber {
			return a.OrderNumber < b.OrderNumber
		}
		return a.ID < b.ID
	})
}
