package service

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/noah-isme/stagehub-api/internal/dto"
	"github.com/noah-isme/stagehub-api/internal/matcher"
	"github.com/noah-isme/stagehub-api/internal/models"
	"github.com/noah-isme/stagehub-api/internal/repository"
)

const defaultRecommendationLimit = 20

// MatchingService ranks offers for students and applicants for companies.
type MatchingService interface {
	Recommendations(ctx context.Context, actor models.Principal, limit int) ([]dto.OfferRecommendation, error)
	Candidates(ctx context.Context, actor models.Principal, offerID uint) ([]dto.CandidateMatch, error)
}

type matchingService struct {
	students     repository.StudentRepository
	companies    repository.CompanyRepository
	offers       repository.OfferRepository
	applications repository.ApplicationRepository
	logger       zerolog.Logger
}

// NewMatchingService constructs the matching service.
func NewMatchingService(students repository.StudentRepository, companies repository.CompanyRepository, offers repository.OfferRepository, applications repository.ApplicationRepository, logger zerolog.Logger) MatchingService {
	return &matchingService{
		students:     students,
		companies:    companies,
		offers:       offers,
		applications: applications,
		logger:       logger.With().Str("component", "matching_service").Logger(),
	}
}

func (s *matchingService) Recommendations(ctx context.Context, actor models.Principal, limit int) ([]dto.OfferRecommendation, error) {
	if !actor.Is(models.RoleStudent) {
		return nil, ErrForbidden
	}
	student, err := s.students.FindByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, mapStudentErr(err)
	}
	if limit <= 0 || limit > 100 {
		limit = defaultRecommendationLimit
	}

	offers, err := s.offers.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	applied, _, err := s.applications.List(ctx, repository.ApplicationFilter{StudentID: student.ID})
	if err != nil {
		return nil, err
	}
	skip := make(map[uint]struct{}, len(applied))
	for _, application := range applied {
		skip[application.OfferID] = struct{}{}
	}

	pool := studentPool(student)
	recommendations := make([]dto.OfferRecommendation, 0, len(offers))
	for _, offer := range offers {
		if _, ok := skip[offer.ID]; ok {
			continue
		}
		result := matcher.Match(pool, offerSkillNames(offer))
		recommendations = append(recommendations, dto.OfferRecommendation{
			Offer:   dto.NewOfferResponse(offer),
			Score:   result.Score,
			Matched: result.Matched,
			Missing: result.Missing,
		})
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		if recommendations[i].Score != recommendations[j].Score {
			return recommendations[i].Score > recommendations[j].Score
		}
		return recommendations[i].Offer.CreatedAt.After(recommendations[j].Offer.CreatedAt)
	})
	if len(recommendations) > limit {
		recommendations = recommendations[:limit]
	}
	return recommendations, nil
}

func (s *matchingService) Candidates(ctx context.Context, actor models.Principal, offerID uint) ([]dto.CandidateMatch, error) {
	company, err := currentCompany(ctx, s.companies, actor)
	if err != nil {
		return nil, err
	}
	offer, err := s.offers.FindByID(ctx, offerID)
	if err != nil {
		return nil, mapOfferErr(err)
	}
	if offer.CompanyID != company.ID {
		return nil, ErrForbidden
	}

	applications, _, err := s.applications.List(ctx, repository.ApplicationFilter{OfferID: offer.ID})
	if err != nil {
		return nil, err
	}

	required := offerSkillNames(offer)
	candidates := make([]dto.CandidateMatch, 0, len(applications))
	for _, application := range applications {
		result := matcher.Match(studentPool(application.Student), required)
		candidates = append(candidates, dto.CandidateMatch{
			ApplicationID: application.ID,
			StudentID:     application.StudentProfileID,
			StudentName:   application.Student.FullName(),
			Status:        string(application.Status),
			TestScore:     application.Score,
			Score:         result.Score,
			Matched:       result.Matched,
			Missing:       result.Missing,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		left, right := -1, -1
		if candidates[i].TestScore != nil {
			left = *candidates[i].TestScore
		}
		if candidates[j].TestScore != nil {
			right = *candidates[j].TestScore
		}
		if left != right {
			return left > right
		}
		return candidates[i].ApplicationID < candidates[j].ApplicationID
	})
	return candidates, nil
}

// studentPool merges declared skills with technical skills detected in a processed CV.
func studentPool(student models.StudentProfile) map[string]struct{} {
	declared := make([]string, 0, len(student.Skills))
	for _, skill := range student.Skills {
		declared = append(declared, skill.Skill.Name)
	}
	var detected []string
	if student.CVSummary != nil && student.CVSummary.Processed {
		detected = student.CVSummary.DetectedSkills().Technical
	}
	return matcher.Pool(declared, detected)
}

func offerSkillNames(offer models.Offer) []string {
	names := make([]string, 0, len(offer.Skills))
	for _, skill := range offer.Skills {
		names = append(names, skill.Skill.Name)
	}
	return names
}
