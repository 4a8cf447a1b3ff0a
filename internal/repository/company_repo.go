package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/stagehub-api/internal/models"
)

// CompanyRepository persists company profiles.
type CompanyRepository interface {
	FindByUserID(ctx context.Context, userID uint) (models.CompanyProfile, error)
	FindByID(ctx context.Context, id uint) (models.CompanyProfile, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.CompanyProfile, error)
}

type companyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository constructs a company repository backed by GORM.
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) FindByUserID(ctx context.Context, userID uint) (models.CompanyProfile, error) {
	var company models.CompanyProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&company).Error; err != nil {
		return models.CompanyProfile{}, err
	}
	return company, nil
}

func (r *companyRepository) FindByID(ctx context.Context, id uint) (models.CompanyProfile, error) {
	var company models.CompanyProfile
	if err := r.db.WithContext(ctx).First(&company, id).Error; err != nil {
		return models.CompanyProfile{}, err
	}
	return company, nil
}

func (r *companyRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.CompanyProfile, error) {
	if len(updates) > 0 {
		result := r.db.WithContext(ctx).Model(&models.CompanyProfile{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return models.CompanyProfile{}, result.Error
		}
		if result.RowsAffected == 0 {
			return models.CompanyProfile{}, gorm.ErrRecordNotFound
		}
	}
	return r.FindByID(ctx, id)
}
