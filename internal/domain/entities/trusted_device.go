package entities

import "time"

// TrustedDevice is a per-user allow-list entry. Marking a device trusted
// suppresses its suspicious classification without touching sighting data.
type TrustedDevice struct {
	UserID     string     `json:"user_id" db:"user_id"`
	Kind       DeviceKind `json:"kind" db:"kind"`
	Identifier string     `json:"identifier" db:"identifier"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// TrustKey identifies a device within a user's trust set.
type TrustKey struct {
	Kind       DeviceKind
	Identifier string
}

// TrustSet is a request-scoped snapshot of a user's trusted devices.
type TrustSet map[TrustKey]struct{}

// Contains reports whether the given device is in the set.
func (s TrustSet) Contains(kind DeviceKind, identifier string) bool {
	_, ok := s[TrustKey{Kind: kind, Identifier: identifier}]
	return ok
}
