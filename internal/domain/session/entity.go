// internal/domain/session/entity.go
package session

import "time"

// Session represents an anonymous browsing session bound to a device
type Session struct {
	ID                string    `json:"id"`
	DeviceFingerprint string    `json:"device_fingerprint,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	LastSeenAt        time.Time `json:"last_seen_at"`
	ExpiresAt         time.Time `json:"expires_at"`
}

// IsExpired checks whether the session has passed its expiry
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
