package models

import "time"

// ApplicationStatus tracks the progress of an application.
type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "en_attente"
	ApplicationViewed    ApplicationStatus = "vue"
	ApplicationInterview ApplicationStatus = "entretien"
	ApplicationAccepted  ApplicationStatus = "acceptee"
	ApplicationRejected  ApplicationStatus = "refusee"
)

var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationPending:   {ApplicationViewed, ApplicationInterview, ApplicationAccepted, ApplicationRejected},
	ApplicationViewed:    {ApplicationInterview, ApplicationAccepted, ApplicationRejected},
	ApplicationInterview: {ApplicationAccepted, ApplicationRejected},
	ApplicationAccepted:  nil,
	ApplicationRejected:  nil,
}

// Valid reports whether the status is a known state.
func (s ApplicationStatus) Valid() bool {
	_, ok := applicationTransitions[s]
	return ok
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, candidate := range applicationTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Cancellable reports whether the student may still withdraw the application.
func (s ApplicationStatus) Cancellable() bool {
	return s == ApplicationPending || s == ApplicationViewed
}

// Terminal reports whether no further transition exists.
func (s ApplicationStatus) Terminal() bool {
	return s.Valid() && len(applicationTransitions[s]) == 0
}

// InterviewType describes how an interview takes place.
type InterviewType string

const (
	InterviewOnSite InterviewType = "presentiel"
	InterviewVideo  InterviewType = "visio"
	InterviewPhone  InterviewType = "telephone"
)

// Application links a student to an offer. The (student, offer) pair is unique.
type Application struct {
	ID                uint              `gorm:"primaryKey" json:"id"`
	StudentProfileID  uint              `gorm:"not null;uniqueIndex:idx_application_student_offer" json:"student_profile_id"`
	Student           StudentProfile    `gorm:"foreignKey:StudentProfileID;constraint:OnDelete:CASCADE" json:"student"`
	OfferID           uint              `gorm:"not null;uniqueIndex:idx_application_student_offer;index" json:"offer_id"`
	Offer             Offer             `gorm:"constraint:OnDelete:CASCADE" json:"offer"`
	Status            ApplicationStatus `gorm:"size:16;not null;index" json:"status"`
	CoverLetter       string            `gorm:"type:text" json:"cover_letter"`
	TestComplete      bool              `gorm:"not null;default:false" json:"test_complete"`
	Score             *int              `json:"score"`
	InterviewDate     *time.Time        `json:"interview_date"`
	InterviewType     *InterviewType    `gorm:"size:16" json:"interview_type"`
	InterviewLocation string            `gorm:"size:255" json:"interview_location"`
	InterviewLink     string            `gorm:"size:512" json:"interview_link"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// ScoreValue returns the recorded score or zero.
func (a Application) ScoreValue() int {
	if a.Score == nil {
		return 0
	}
	return *a.Score
}
