package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/stagehub-api/internal/models"
)

// CVSummaryRepository persists the derived CV summaries.
type CVSummaryRepository interface {
	Upsert(ctx context.Context, summary *models.CVSummary) error
	FindByStudent(ctx context.Context, studentID uint) (models.CVSummary, error)
	CountByProcessed(ctx context.Context) (processed int64, pending int64, err error)
}

type cvSummaryRepository struct {
	db *gorm.DB
}

// NewCVSummaryRepository constructs the CV summary repository.
func NewCVSummaryRepository(db *gorm.DB) CVSummaryRepository {
	return &cvSummaryRepository{db: db}
}

func (r *cvSummaryRepository) Upsert(ctx context.Context, summary *models.CVSummary) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_profile_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"extracted_text", "summary", "skills", "processed", "processed_at", "updated_at"}),
	}).Create(summary).Error
	if err != nil {
		return err
	}

	stored, err := r.FindByStudent(ctx, summary.StudentProfileID)
	if err != nil {
		return err
	}
	*summary = stored
	return nil
}

func (r *cvSummaryRepository) FindByStudent(ctx context.Context, studentID uint) (models.CVSummary, error) {
	var summary models.CVSummary
	if err := r.db.WithContext(ctx).Where("student_profile_id = ?", studentID).First(&summary).Error; err != nil {
		return models.CVSummary{}, err
	}
	return summary, nil
}

func (r *cvSummaryRepository) CountByProcessed(ctx context.Context) (int64, int64, error) {
	var processed int64
	if err := r.db.WithContext(ctx).Model(&models.CVSummary{}).Where("processed = ?", true).Count(&processed).Error; err != nil {
		return 0, 0, err
	}

	var pending int64
	err := r.db.WithContext(ctx).
		Model(&models.StudentProfile{}).
		Joins("LEFT JOIN cv_summaries ON cv_summaries.student_profile_id = student_profiles.id").
		Where("student_profiles.cv_path IS NOT NULL AND student_profiles.cv_path <> ''").
		Where("cv_summaries.id IS NULL OR cv_summaries.processed = ?", false).
		Count(&pending).Error
	if err != nil {
		return 0, 0, err
	}

	return processed, pending, nil
}
