package domain

import "time"

// Entry is a content record. Entries are the resource the API serves; the
// schema is intentionally small since consumers treat the payload as opaque
// JSON.
type Entry struct {
	ID        string
	Title     string
	Body      string
	Tags      []string // space-delimited in storage
	CreatedBy string   // subject of the token that created the entry
	CreatedAt time.Time
	UpdatedAt time.Time
}
