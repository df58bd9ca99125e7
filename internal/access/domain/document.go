package domain

import "time"

// Document is the index entry for an owner's directive. Bytes live elsewhere.
type Document struct {
	ID        string
	OwnerID   string
	Title     string
	Kind      string
	UpdatedAt time.Time
}
