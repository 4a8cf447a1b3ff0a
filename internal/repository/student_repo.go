package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/stagehub-api/internal/models"
)

// StudentRepository persists student profiles, declared skills and CV references.
type StudentRepository interface {
	FindByUserID(ctx context.Context, userID uint) (models.StudentProfile, error)
	FindByID(ctx context.Context, id uint) (models.StudentProfile, error)
	UpdateProfile(ctx context.Context, id uint, updates map[string]interface{}) (models.StudentProfile, error)
	ReplaceCV(ctx context.Context, id uint, path string) error
	ReplaceSkills(ctx context.Context, id uint, skills []SkillLevel) ([]models.StudentSkill, error)
	ListPendingCV(ctx context.Context) ([]models.StudentProfile, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student repository backed by GORM.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Skills.Skill").
		Preload("CVSummary")
}

func (r *studentRepository) FindByUserID(ctx context.Context, userID uint) (models.StudentProfile, error) {
	var profile models.StudentProfile
	if err := r.withRelations(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return models.StudentProfile{}, err
	}
	return profile, nil
}

func (r *studentRepository) FindByID(ctx context.Context, id uint) (models.StudentProfile, error) {
	var profile models.StudentProfile
	if err := r.withRelations(ctx).First(&profile, id).Error; err != nil {
		return models.StudentProfile{}, err
	}
	return profile, nil
}

func (r *studentRepository) UpdateProfile(ctx context.Context, id uint, updates map[string]interface{}) (models.StudentProfile, error) {
	if len(updates) > 0 {
		result := r.db.WithContext(ctx).Model(&models.StudentProfile{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return models.StudentProfile{}, result.Error
		}
		if result.RowsAffected == 0 {
			return models.StudentProfile{}, gorm.ErrRecordNotFound
		}
	}
	return r.FindByID(ctx, id)
}

// ReplaceCV points the profile at a new CV file and marks any existing summary as stale.
func (r *studentRepository) ReplaceCV(ctx context.Context, id uint, path string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		update := tx.Model(&models.StudentProfile{}).Where("id = ?", id).Update("cv_path", path)
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Model(&models.CVSummary{}).
			Where("student_profile_id = ?", id).
			Updates(map[string]interface{}{"processed": false, "processed_at": nil}).
			Error
	})
}

func (r *studentRepository) ReplaceSkills(ctx context.Context, id uint, skills []SkillLevel) ([]models.StudentSkill, error) {
	skills = dedupeLevels(skills)

	var saved []models.StudentSkill
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		catalog, err := ensureSkills(tx, skills)
		if err != nil {
			return err
		}

		if err := tx.Where("student_profile_id = ?", id).Delete(&models.StudentSkill{}).Error; err != nil {
			return err
		}

		rows := make([]models.StudentSkill, 0, len(skills))
		for _, item := range skills {
			skill := catalog[item.Name]
			rows = append(rows, models.StudentSkill{StudentProfileID: id, SkillID: skill.ID, Level: item.Level})
		}
		if len(rows) > 0 {
			if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
				return err
			}
		}

		return tx.Preload("Skill").Where("student_profile_id = ?", id).Find(&saved).Error
	})
	if err != nil {
		return nil, err
	}

	return saved, nil
}

// ListPendingCV returns students holding a CV without a processed summary.
func (r *studentRepository) ListPendingCV(ctx context.Context) ([]models.StudentProfile, error) {
	var profiles []models.StudentProfile
	err := r.db.WithContext(ctx).
		Model(&models.StudentProfile{}).
		Select("student_profiles.*").
		Joins("LEFT JOIN cv_summaries ON cv_summaries.student_profile_id = student_profiles.id").
		Where("student_profiles.cv_path IS NOT NULL AND student_profiles.cv_path <> ''").
		Where("cv_summaries.id IS NULL OR cv_summaries.processed = ?", false).
		Order("student_profiles.id ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}
