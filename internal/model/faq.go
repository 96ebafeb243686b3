package model

import "time"

const (
	AttachmentTypeImage    = "image"
	AttachmentTypeDocument = "document"
)

type Faq struct {
	ID           string       `gorm:"primaryKey;size:36" json:"id"`
	Question     string       `gorm:"type:text;not null" json:"question"`
	Answer       string       `gorm:"type:text;not null" json:"answer"`
	Category     string       `gorm:"size:128;not null;index" json:"category"`
	DocumentText string       `gorm:"type:text" json:"-"`
	Attachments  []Attachment `gorm:"foreignKey:FaqID;constraint:OnDelete:CASCADE" json:"attachments"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Attachment is owned by exactly one Faq and never shared across records.
type Attachment struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	FaqID     string    `gorm:"size:36;not null;index" json:"-"`
	URL       string    `gorm:"size:512;not null" json:"url"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Extension string    `gorm:"size:16" json:"extension"`
	Type      string    `gorm:"size:16;not null" json:"type"`
	CreatedAt time.Time `json:"-"`
}
