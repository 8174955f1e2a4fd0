package models

import "time"

// WebhookEvent records every provider event id we have processed. Inserting
// the row is the dedupe step: a conflict on the primary key means the event
// was already handled and must be skipped.
type WebhookEvent struct {
	ID          string    `gorm:"primaryKey;size:128" json:"id"`
	Type        string    `gorm:"size:64;index" json:"type"`
	ProcessedAt time.Time `json:"processed_at"`
	CreatedAt   time.Time `json:"created_at"`
}
