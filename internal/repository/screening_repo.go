package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/stagehub-api/internal/models"
)

// ErrScreeningTestLocked is returned by Replace once a candidate has completed the offer's test.
var ErrScreeningTestLocked = errors.New("screening test has completed submissions")

// ScreeningTestRepository persists the questionnaires attached to offers.
type ScreeningTestRepository interface {
	Replace(ctx context.Context, test *models.ScreeningTest) error
	FindByOffer(ctx context.Context, offerID uint) (models.ScreeningTest, error)
}

type screeningTestRepository struct {
	db *gorm.DB
}

// NewScreeningTestRepository constructs the screening test repository.
func NewScreeningTestRepository(db *gorm.DB) ScreeningTestRepository {
	return &screeningTestRepository{db: db}
}

// Replace drops any existing test of the offer and stores the new one with its
// questions and answers. The offer row is locked so a concurrent submission
// either commits first and blocks the replace, or waits for it.
func (r *screeningTestRepository) Replace(ctx context.Context, test *models.ScreeningTest) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockOffer(tx, test.OfferID); err != nil {
			return err
		}
		completed, err := hasCompletedApplications(tx, test.OfferID)
		if err != nil {
			return err
		}
		if completed {
			return ErrScreeningTestLocked
		}

		if err := deleteScreeningTest(tx, test.OfferID); err != nil {
			return err
		}
		test.ID = 0
		for i := range test.Questions {
			test.Questions[i].ID = 0
			for j := range test.Questions[i].Answers {
				test.Questions[i].Answers[j].ID = 0
			}
		}
		return tx.Create(test).Error
	})
	if err != nil {
		return err
	}

	stored, err := r.FindByOffer(ctx, test.OfferID)
	if err != nil {
		return err
	}
	*test = stored
	return nil
}

func (r *screeningTestRepository) FindByOffer(ctx context.Context, offerID uint) (models.ScreeningTest, error) {
	var test models.ScreeningTest
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Preload("Questions.Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Where("offer_id = ?", offerID).
		First(&test).Error
	if err != nil {
		return models.ScreeningTest{}, err
	}
	return test, nil
}

func hasCompletedApplications(tx *gorm.DB, offerID uint) (bool, error) {
	var count int64
	err := tx.Model(&models.Application{}).
		Where("offer_id = ? AND test_complete = ?", offerID, true).
		Count(&count).Error
	return count > 0, err
}

// lockOffer takes a row lock on the offer for the rest of the transaction.
func lockOffer(tx *gorm.DB, offerID uint) error {
	var offer models.Offer
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", offerID).
		Take(&offer).Error
}

func deleteScreeningTest(tx *gorm.DB, offerID uint) error {
	testIDs := tx.Model(&models.ScreeningTest{}).Select("id").Where("offer_id = ?", offerID)
	questionIDs := tx.Model(&models.Question{}).Select("id").Where("test_id IN (?)", testIDs)

	if err := tx.Where("question_id IN (?)", questionIDs).Delete(&models.Answer{}).Error; err != nil {
		return err
	}
	if err := tx.Where("test_id IN (?)", testIDs).Delete(&models.Question{}).Error; err != nil {
		return err
	}
	return tx.Where("offer_id = ?", offerID).Delete(&models.ScreeningTest{}).Error
}
