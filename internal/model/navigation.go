package model

// NavigationLink is a row of the `navigation` table: a labelled URL owned
// by a role.  URL is unique across all rows.
type NavigationLink struct {
	ID       uint64 `json:"id"`
	LinkName string `json:"linkName"`
	URL      string `json:"url"`
	RoleID   uint64 `json:"roleId"`
}
