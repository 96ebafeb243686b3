package model

import "time"

// ActivityEntry is one append-only audit record for a knowledge-base mutation.
type ActivityEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Action    string    `gorm:"size:32;not null;index" json:"action"`
	Target    string    `gorm:"size:255" json:"target"`
	Actor     string    `gorm:"size:64;not null" json:"actor"`
	Detail    string    `gorm:"type:text" json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}
