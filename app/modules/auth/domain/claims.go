package authdomain

import (
	"time"
)

// Claims represents the domain model for an operator's bearer token.
type Claims struct {
	Subject   string
	Role      Role
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// IsExpired checks if the claims have expired.
func (c *Claims) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// CanTriggerUpdates reports whether the bearer may start daily updates.
func (c *Claims) CanTriggerUpdates() bool {
	return c.Role == RoleAdmin
}
