package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/stagehub-api/internal/models"
)

// UserFilter defines filters for listing accounts from the admin console.
type UserFilter struct {
	Role   models.Role
	Active *bool
	Search string
	Page
}

// UserRepository persists accounts and their profiles.
type UserRepository interface {
	CreateStudent(ctx context.Context, user *models.User, profile *models.StudentProfile) error
	CreateCompany(ctx context.Context, user *models.User, profile *models.CompanyProfile) error
	FindByID(ctx context.Context, id uint) (models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)
	UpdateActive(ctx context.Context, id uint, active bool) (models.User, error)
	CountByRole(ctx context.Context) (map[models.Role]int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs the account repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateStudent(ctx context.Context, user *models.User, profile *models.StudentProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile.UserID = user.ID
		return tx.Create(profile).Error
	})
}

func (r *userRepository) CreateCompany(ctx context.Context, user *models.User, profile *models.CompanyProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile.UserID = user.ID
		return tx.Create(profile).Error
	})
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})

	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}

	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(email) LIKE ?", like)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := paginate(query.Order("created_at DESC"), filter.Page).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepository) UpdateActive(ctx context.Context, id uint, active bool) (models.User, error) {
	update := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("active", active)
	if update.Error != nil {
		return models.User{}, update.Error
	}
	if update.RowsAffected == 0 {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *userRepository) CountByRole(ctx context.Context) (map[models.Role]int64, error) {
	var rows []struct {
		Role  models.Role
		Total int64
	}
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("role, COUNT(*) AS total").
		Group("role").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := make(map[models.Role]int64, len(rows))
	for _, row := range rows {
		result[row.Role] = row.Total
	}
	return result, nil
}
