package models

import "time"

// Message is a direct message exchanged between two accounts.
type Message struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	SenderID    uint       `gorm:"not null;index" json:"sender_id"`
	RecipientID uint       `gorm:"not null;index" json:"recipient_id"`
	Subject     string     `gorm:"size:255" json:"subject"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	ReadAt      *time.Time `json:"read_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Notification kinds emitted by the platform.
const (
	NotificationApplicationReceived = "application_received"
	NotificationStatusChanged       = "application_status"
	NotificationInterviewScheduled  = "interview_scheduled"
	NotificationMessageReceived     = "message"
	NotificationTestSubmitted       = "test_submitted"
	NotificationCVProcessed         = "cv_processed"
)

// Notification is an append-only record targeted to one account.
type Notification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RecipientID uint      `gorm:"not null;index" json:"recipient_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Body        string    `gorm:"type:text" json:"body"`
	Type        string    `gorm:"size:64;not null" json:"type"`
	Read        bool      `gorm:"not null;default:false" json:"read"`
	Link        string    `gorm:"size:512" json:"link"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
