package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/stagehub-api/internal/models"
)

var errNothingDeleted = errors.New("nothing deleted")

// ApplicationFilter filters application listings.
type ApplicationFilter struct {
	StudentID uint
	OfferID   uint
	Status    models.ApplicationStatus
	Page
}

// StatusChange describes a guarded status update. Interview fields are only written when set.
type StatusChange struct {
	From              models.ApplicationStatus
	To                models.ApplicationStatus
	InterviewDate     *time.Time
	InterviewType     *models.InterviewType
	InterviewLocation string
	InterviewLink     string
}

// ApplicationRepository persists applications and screening submissions.
type ApplicationRepository interface {
	Create(ctx context.Context, application *models.Application) error
	Exists(ctx context.Context, studentID, offerID uint) (bool, error)
	FindByID(ctx context.Context, id uint) (models.Application, error)
	List(ctx context.Context, filter ApplicationFilter) ([]models.Application, int64, error)
	CountByOffer(ctx context.Context, offerID uint) (int64, error)
	ChangeStatus(ctx context.Context, id uint, change StatusChange) (bool, error)
	DeleteCancellable(ctx context.Context, id uint) (bool, error)
	SubmitTest(ctx context.Context, id uint, score int, answers []models.SubmittedAnswer) (bool, error)
	CountByStatus(ctx context.Context) (map[models.ApplicationStatus]int64, error)
}

type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository constructs an application repository backed by GORM.
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, application *models.Application) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(application).Error
}

func (r *applicationRepository) Exists(ctx context.Context, studentID, offerID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("student_profile_id = ? AND offer_id = ?", studentID, offerID).
		Count(&count).Error
	return count > 0, err
}

func (r *applicationRepository) FindByID(ctx context.Context, id uint) (models.Application, error) {
	var application models.Application
	err := r.db.WithContext(ctx).
		Preload("Offer.Company").
		Preload("Offer.Skills.Skill").
		Preload("Student.Skills.Skill").
		Preload("Student.CVSummary").
		First(&application, id).Error
	if err != nil {
		return models.Application{}, err
	}
	return application, nil
}

func (r *applicationRepository) List(ctx context.Context, filter ApplicationFilter) ([]models.Application, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Application{})

	if filter.StudentID != 0 {
		query = query.Where("student_profile_id = ?", filter.StudentID)
	}

	if filter.OfferID != 0 {
		query = query.Where("offer_id = ?", filter.OfferID)
	}

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var applications []models.Application
	err := paginate(query, filter.Page).
		Preload("Offer.Company").
		Preload("Offer.Skills.Skill").
		Preload("Student.Skills.Skill").
		Preload("Student.CVSummary").
		Order("created_at DESC").
		Find(&applications).Error
	if err != nil {
		return nil, 0, err
	}

	return applications, total, nil
}

func (r *applicationRepository) CountByOffer(ctx context.Context, offerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Application{}).Where("offer_id = ?", offerID).Count(&count).Error
	return count, err
}

// ChangeStatus applies the change only while the row still holds change.From.
// It reports false when a concurrent update won.
func (r *applicationRepository) ChangeStatus(ctx context.Context, id uint, change StatusChange) (bool, error) {
	updates := map[string]interface{}{"status": change.To}
	if change.InterviewDate != nil {
		updates["interview_date"] = *change.InterviewDate
		updates["interview_type"] = change.InterviewType
		updates["interview_location"] = change.InterviewLocation
		updates["interview_link"] = change.InterviewLink
	}

	result := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ? AND status = ?", id, change.From).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// DeleteCancellable removes the application and its submitted answers while it is still cancellable.
func (r *applicationRepository) DeleteCancellable(ctx context.Context, id uint) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("application_id = ?", id).Delete(&models.SubmittedAnswer{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ? AND status IN ?", id, []models.ApplicationStatus{models.ApplicationPending, models.ApplicationViewed}).
			Delete(&models.Application{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Roll back the answer deletion as well.
			return errNothingDeleted
		}
		deleted = true
		return nil
	})
	if errors.Is(err, errNothingDeleted) {
		return false, nil
	}
	return deleted, err
}

// SubmitTest records the score and answers once. The conditional update on
// test_complete guarantees a single winner among concurrent submissions. The
// offer row lock serializes the submission against a screening test replace.
func (r *applicationRepository) SubmitTest(ctx context.Context, id uint, score int, answers []models.SubmittedAnswer) (bool, error) {
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var application models.Application
		if err := tx.Select("id", "offer_id").Where("id = ?", id).Take(&application).Error; err != nil {
			return err
		}
		if err := lockOffer(tx, application.OfferID); err != nil {
			return err
		}

		result := tx.Model(&models.Application{}).
			Where("id = ? AND test_complete = ?", id, false).
			Updates(map[string]interface{}{"score": score, "test_complete": true})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		for i := range answers {
			answers[i].ApplicationID = id
		}
		if len(answers) > 0 {
			if err := tx.Create(&answers).Error; err != nil {
				return err
			}
		}
		applied = true
		return nil
	})
	return applied, err
}

func (r *applicationRepository) CountByStatus(ctx context.Context) (map[models.ApplicationStatus]int64, error) {
	var rows []struct {
		Status models.ApplicationStatus
		Total  int64
	}
	if err := r.db.WithContext(ctx).Model(&models.Application{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := make(map[models.ApplicationStatus]int64, len(rows))
	for _, row := range rows {
		result[row.Status] = row.Total
	}
	return result, nil
}
