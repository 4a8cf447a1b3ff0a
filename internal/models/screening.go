package models

import "time"

// ScreeningTest is an optional multiple-choice questionnaire attached to an offer.
type ScreeningTest struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	OfferID   uint       `gorm:"uniqueIndex;not null" json:"offer_id"`
	Title     string     `gorm:"size:255" json:"title"`
	Questions []Question `gorm:"foreignKey:TestID;constraint:OnDelete:CASCADE" json:"questions"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Question belongs to one screening test. Exactly one of its answers is correct.
type Question struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	TestID   uint     `gorm:"not null;index" json:"test_id"`
	Position int      `gorm:"not null" json:"position"`
	Prompt   string   `gorm:"type:text;not null" json:"prompt"`
	Answers  []Answer `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"answers"`
}

// Answer is a candidate choice for a question.
type Answer struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	QuestionID uint   `gorm:"not null;index" json:"question_id"`
	Label      string `gorm:"size:512;not null" json:"label"`
	Correct    bool   `gorm:"not null;default:false" json:"correct"`
}

// SubmittedAnswer records the choice made by a candidate. Rows are immutable once written.
type SubmittedAnswer struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ApplicationID uint      `gorm:"not null;uniqueIndex:idx_submitted_answer" json:"application_id"`
	QuestionID    uint      `gorm:"not null;uniqueIndex:idx_submitted_answer" json:"question_id"`
	AnswerID      uint      `gorm:"not null" json:"answer_id"`
	Correct       bool      `gorm:"not null" json:"correct"`
	CreatedAt     time.Time `json:"created_at"`
}
