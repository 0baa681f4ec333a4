package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/projectdesk/internal/model"
	"github.com/iliyamo/projectdesk/internal/queue"
)

// PermissionStore is the role-permission graph.
type PermissionStore interface {
	ListForRole(ctx context.Context, roleID uint64) ([]model.MenuEntry, error)
	Replace(ctx context.Context, roleID uint64, menuIDs []uint64) error
}

// PermissionItem is one element of a replace request.
type PermissionItem struct {
	MenuID uint64 `json:"menuId"`
}

// PermissionEditor validates and applies full permission replacements.
type PermissionEditor struct {
	Perms  PermissionStore
	Events Publisher
}

// List returns the menu entries currently granted to roleID.
func (p *PermissionEditor) List(ctx context.Context, roleID uint64) ([]model.MenuEntry, error) {
	if roleID == 0 {
		return nil, invalid("roleId", "is required")
	}
	return p.Perms.ListForRole(ctx, roleID)
}

// Save replaces the permission set of roleID with items.  An unknown role
// is reported as repository.ErrRoleNotFound and leaves storage unchanged,
// as does any failure part way through.
func (p *PermissionEditor) Save(ctx context.Context, actor string, roleID uint64, items []PermissionItem) error {
	if roleID == 0 {
		return invalid("roleId", "is required")
	}
	if items == nil {
		return invalid("permissions", "must be a list")
	}
	ids := make([]uint64, 0, len(items))
	for i, it := range items {
		if it.MenuID == 0 {
			return invalid(fmt.Sprintf("permissions[%d].menuId", i), "is required")
		}
		ids = append(ids, it.MenuID)
	}
	if err := p.Perms.Replace(ctx, roleID, ids); err != nil {
		return err
	}
	Publish(p.Events, queue.AuditEvent{Kind: queue.KindPermissionsReplaced, Actor: actor, RoleID: roleID, MenuIDs: ids})
	return nil
}
