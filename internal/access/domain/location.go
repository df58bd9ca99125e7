package domain

import "time"

// LoginContext is what the caller knows about where a login came from.
type LoginContext struct {
	IP      string
	Country string // ISO 3166 alpha-2 from the edge, optional
}

// Location is a coarse, privacy-preserving place derived from a LoginContext.
type Location struct {
	Key     string // e.g. "AU|203.0.0.0/16"
	Country string
	Network string
}

// LoginLocation is one remembered location for an identifier.
type LoginLocation struct {
	Identifier  string
	LocationKey string
	FirstSeenAt time.Time
	LastSeenAt  time.Time
	Logins      int
}
