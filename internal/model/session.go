package model

import "time"

// Session is one assistant conversation. LastUploadURL is the most recent
// user upload in this session; the proposal extractor reads it for the
// immediately following proposal and it is overwritten at the next upload.
type Session struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	Title         string    `gorm:"size:128;not null" json:"title"`
	LastUploadURL string    `gorm:"size:512" json:"last_upload_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
