package entity

import "time"

// Car is a marketplace listing. This subsystem only reads cars when
// resolving favorites and ownership; listing lifecycle lives elsewhere.
type Car struct {
	ID         string
	OwnerID    string
	Title      string
	Make       string
	Model      string
	Year       int
	PriceCents int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
