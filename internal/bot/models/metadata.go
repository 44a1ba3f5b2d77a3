package models

import "time"

// Metadata is the persisted description of one archived batch.
type Metadata struct {
	Code        string
	Description string
	IsMix       bool
	CreatedAt   time.Time
}
