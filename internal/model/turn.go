package model

import "time"

const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// Turn is append-only; the only post-creation mutation is backfilling
// AssetPreviewURL once an async upload finishes.
type Turn struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	SessionID       uint      `gorm:"not null;index" json:"session_id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	Sender          string    `gorm:"size:16;not null;index" json:"sender"`
	Text            string    `gorm:"type:text;not null" json:"text"`
	AssetPreviewURL string    `gorm:"size:512" json:"asset_preview_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
