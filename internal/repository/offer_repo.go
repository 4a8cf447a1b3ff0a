package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/stagehub-api/internal/models"
)

// OfferFilter filters offer listings.
type OfferFilter struct {
	CompanyID    uint
	Status       models.OfferStatus
	ContractType models.ContractType
	City         string
	Search       string
	Page
}

// OfferRepository persists offers and their required skills.
type OfferRepository interface {
	Create(ctx context.Context, offer *models.Offer, skills []SkillLevel) error
	Update(ctx context.Context, id uint, updates map[string]interface{}, skills *[]SkillLevel) (models.Offer, error)
	FindByID(ctx context.Context, id uint) (models.Offer, error)
	List(ctx context.Context, filter OfferFilter) ([]models.Offer, int64, error)
	ListActive(ctx context.Context) ([]models.Offer, error)
	Delete(ctx context.Context, id uint) error
	CountByStatus(ctx context.Context) (map[models.OfferStatus]int64, error)
}

type offerRepository struct {
	db *gorm.DB
}

// NewOfferRepository constructs an offer repository backed by GORM.
func NewOfferRepository(db *gorm.DB) OfferRepository {
	return &offerRepository{db: db}
}

func (r *offerRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Company").
		Preload("Skills.Skill")
}

func (r *offerRepository) Create(ctx context.Context, offer *models.Offer, skills []SkillLevel) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(offer).Error; err != nil {
			return err
		}
		return replaceOfferSkills(tx, offer.ID, skills)
	})
	if err != nil {
		return err
	}

	stored, err := r.FindByID(ctx, offer.ID)
	if err != nil {
		return err
	}
	*offer = stored
	return nil
}

func (r *offerRepository) Update(ctx context.Context, id uint, updates map[string]interface{}, skills *[]SkillLevel) (models.Offer, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			result := tx.Model(&models.Offer{}).Where("id = ?", id).Updates(updates)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		if skills != nil {
			return replaceOfferSkills(tx, id, *skills)
		}
		return nil
	})
	if err != nil {
		return models.Offer{}, err
	}

	return r.FindByID(ctx, id)
}

func replaceOfferSkills(tx *gorm.DB, offerID uint, skills []SkillLevel) error {
	skills = dedupeLevels(skills)

	catalog, err := ensureSkills(tx, skills)
	if err != nil {
		return err
	}

	if err := tx.Where("offer_id = ?", offerID).Delete(&models.OfferSkill{}).Error; err != nil {
		return err
	}

	rows := make([]models.OfferSkill, 0, len(skills))
	for _, item := range skills {
		rows = append(rows, models.OfferSkill{OfferID: offerID, SkillID: catalog[item.Name].ID, Level: item.Level})
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Omit(clause.Associations).Create(&rows).Error
}

func (r *offerRepository) FindByID(ctx context.Context, id uint) (models.Offer, error) {
	var offer models.Offer
	if err := r.withRelations(ctx).First(&offer, id).Error; err != nil {
		return models.Offer{}, err
	}
	return offer, nil
}

func (r *offerRepository) List(ctx context.Context, filter OfferFilter) ([]models.Offer, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Offer{})

	if filter.CompanyID != 0 {
		query = query.Where("company_id = ?", filter.CompanyID)
	}

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if filter.ContractType != "" {
		query = query.Where("contract_type = ?", filter.ContractType)
	}

	if filter.City != "" {
		query = query.Where("LOWER(city) = ?", strings.ToLower(strings.TrimSpace(filter.City)))
	}

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var offers []models.Offer
	err := paginate(query, filter.Page).
		Preload("Company").
		Preload("Skills.Skill").
		Order("created_at DESC").
		Find(&offers).Error
	if err != nil {
		return nil, 0, err
	}

	return offers, total, nil
}

func (r *offerRepository) ListActive(ctx context.Context) ([]models.Offer, error) {
	var offers []models.Offer
	if err := r.withRelations(ctx).
		Where("status = ?", models.OfferStatusActive).
		Order("created_at DESC").
		Find(&offers).Error; err != nil {
		return nil, err
	}
	return offers, nil
}

func (r *offerRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteScreeningTest(tx, id); err != nil {
			return err
		}
		if err := tx.Where("offer_id = ?", id).Delete(&models.OfferSkill{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Offer{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *offerRepository) CountByStatus(ctx context.Context) (map[models.OfferStatus]int64, error) {
	var rows []struct {
		Status models.OfferStatus
		Total  int64
	}
	if err := r.db.WithContext(ctx).Model(&models.Offer{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := make(map[models.OfferStatus]int64, len(rows))
	for _, row := range rows {
		result[row.Status] = row.Total
	}
	return result, nil
}
