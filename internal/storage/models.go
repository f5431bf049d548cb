package storage

import (
	"time"
)

// SlotRow mirrors the featured_slots table. The end column always holds the
// open-end sentinel rather than NULL so range predicates stay simple.
type SlotRow struct {
	ID         string
	ContentID  string
	StartAt    time.Time
	EndAt      time.Time
	OrderIndex int
	CreatedAt  time.Time
}
