package model

import "time"

// WebhookEvent is one processed provider notification. EventID is the
// idempotency key built from the event type and transaction id.
type WebhookEvent struct {
	EventID       string `gorm:"primaryKey;size:128;uniqueIndex;not null"`
	EventType     string `gorm:"size:64;index"`
	TransactionID string `gorm:"size:128;index"`
	Status        string `gorm:"size:32"`
	BasketIdent   string `gorm:"size:128;index"`
	Payload       string `gorm:"type:text"`
	ProcessedAt   time.Time
	CreatedAt     time.Time
}
