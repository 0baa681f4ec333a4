// Package queue defines the audit events exchanged over the message broker
// and the background consumer that records them.
package queue

import "time"

// AuditQueueName is the durable queue every audit event is routed to.
const AuditQueueName = "projectdesk.audit"

// Event kinds.
const (
	KindUserRegistered      = "user.registered"
	KindPermissionsReplaced = "permissions.replaced"
	KindRoleDeleted         = "role.deleted"
)

// AuditEvent is published after a state change commits.  It carries enough
// context for downstream consumers to log or notify without querying the
// primary database.  Fields not relevant to a kind are left zero.
type AuditEvent struct {
	Kind    string    `json:"kind"`
	Actor   string    `json:"actor,omitempty"`
	UserID  uint64    `json:"user_id,omitempty"`
	Handle  string    `json:"handle,omitempty"`
	RoleID  uint64    `json:"role_id,omitempty"`
	MenuIDs []uint64  `json:"menu_ids,omitempty"`
	At      time.Time `json:"at"`
}
