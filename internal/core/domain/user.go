package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ValidRole reports whether s is a recognised local role.
func ValidRole(s string) bool {
	return s == RoleAdmin || s == RoleUser
}

// Identity is the remote ticketing-service user a session acts as.
// It is captured once per authentication and never mutated afterwards;
// re-authentication produces a fresh Identity.
type Identity struct {
	RemoteID     int               `json:"remote_id"`
	Username     string            `json:"username"`
	CustomFields map[string]string `json:"custom_fields,omitempty"`
}

// RoleRecord is the locally persisted record for a remote identity.
// Exactly one record exists per remote id.
type RoleRecord struct {
	RemoteID        int               `json:"remote_id"`
	Username        string            `json:"username"`
	CustomFields    map[string]string `json:"custom_fields,omitempty"`
	Role            string            `json:"role"`
	LastLogin       time.Time         `json:"last_login"`
	ConversionCount int               `json:"conversion_count"`
	CreatedAt       time.Time         `json:"created_at"`
}
