package dto

// OfferRecommendation ranks an offer against the caller's skills.
type OfferRecommendation struct {
	Offer   OfferResponse `json:"offer"`
	Score   float64       `json:"score"`
	Matched []string      `json:"matched"`
	Missing []string      `json:"missing"`
}

// CandidateMatch ranks an applicant against an offer.
type CandidateMatch struct {
	ApplicationID uint     `json:"application_id"`
	StudentID     uint     `json:"student_id"`
	StudentName   string   `json:"student_name"`
	Status        string   `json:"status"`
	TestScore     *int     `json:"test_score"`
	Score         float64  `json:"score"`
	Matched       []string `json:"matched"`
	Missing       []string `json:"missing"`
}
