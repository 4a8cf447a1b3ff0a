package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/stagehub-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func seedStudent(t *testing.T, db *gorm.DB, email string, cvPath *string) models.StudentProfile {
	t.Helper()
	user := models.User{Email: email, PasswordHash: "x", Role: models.RoleStudent, Active: true}
	profile := models.StudentProfile{FirstName: "Student", LastName: email, CVPath: cvPath}
	require.NoError(t, NewUserRepository(db).CreateStudent(context.Background(), &user, &profile))
	return profile
}

func seedCompany(t *testing.T, db *gorm.DB, email string) models.CompanyProfile {
	t.Helper()
	user := models.User{Email: email, PasswordHash: "x", Role: models.RoleCompany, Active: true}
	profile := models.CompanyProfile{Name: "Acme " + email}
	require.NoError(t, NewUserRepository(db).CreateCompany(context.Background(), &user, &profile))
	return profile
}

func seedOffer(t *testing.T, db *gorm.DB, companyID uint, title string, status models.OfferStatus, skills ...string) models.Offer {
	t.Helper()
	offer := models.Offer{CompanyID: companyID, Title: title, ContractType: models.ContractInternship, City: "Lyon", Status: status}
	levels := make([]SkillLevel, 0, len(skills))
	for _, skill := range skills {
		levels = append(levels, SkillLevel{Name: skill, Level: 3})
	}
	require.NoError(t, NewOfferRepository(db).Create(context.Background(), &offer, levels))
	return offer
}

func strPtr(value string) *string {
	return &value
}
