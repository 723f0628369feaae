package domain

import "time"

// Audit actions recorded by the auth flow.
const (
	AuditLogin      = "login"
	AuditLogout     = "logout"
	AuditRoleChange = "role_change"
)

// AuditEvent is one entry in the authentication audit trail.
type AuditEvent struct {
	RemoteID int
	Username string
	Action   string
	Detail   string
	At       time.Time
}
