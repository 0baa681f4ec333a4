package model

// MenuEntry is a node of the two-level navigation catalog stored in `menu`.
// Top-level entries have ParentID 0; children point at a top-level entry.
type MenuEntry struct {
	ID          uint64 `json:"menuId"`
	ParentID    uint64 `json:"parentMenuId"`
	DisplayName string `json:"displayName"`
	OrderNumber int    `json:"orderNumber"`
	ActionCode  int    `json:"actionCode"`
	Visible     bool   `json:"visible"`
}

// TopLevelID is the id of the top-level entry this entry is grouped under:
// its parent for a child, itself otherwise.
func (m MenuEntry) TopLevelID() uint64 {
	if m.ParentID != 0 {
		return m.ParentID
	}
	return m.ID
}

// IsTopLevel reports whether the entry has no parent.
func (m MenuEntry) IsTopLevel() bool { return m.ParentID == 0 }

// MenuTag classifies catalog entries for the browsing view.
type MenuTag string

const (
	TagMenu       MenuTag = "Menu"
	TagSubmenu    MenuTag = "Submenu"
	TagSubSubmenu MenuTag = "Sub-submenu"
)

// CatalogEntry is a MenuEntry together with its catalog classification.
type CatalogEntry struct {
	Tag MenuTag `json:"menuType"`
	MenuEntry
}
