package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/stagehub-api/internal/dto"
	"github.com/noah-isme/stagehub-api/internal/models"
	"github.com/noah-isme/stagehub-api/internal/repository"
)

func TestAccountServiceRegisterStudent(t *testing.T) {
	db := setupServiceDB(t)
	users := repository.NewUserRepository(db)
	svc := NewAccountService(users, testValidator(), testLogger())
	svc.(*accountService).cost = bcrypt.MinCost

	resp, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:     " Ada@Example.com ",
		Password:  "correct-horse",
		Role:      "student",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", resp.Email)
	require.Equal(t, models.RoleStudent, resp.Role)

	user, err := users.FindByID(context.Background(), resp.ID)
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct-horse")))

	profile, err := repository.NewStudentRepository(db).FindByUserID(context.Background(), resp.ID)
	require.NoError(t, err)
	require.Equal(t, "Ada", profile.FirstName)

	_, err = svc.Register(context.Background(), dto.RegisterRequest{
		Email:     "ada@example.com",
		Password:  "another-pass",
		Role:      "student",
		FirstName: "Ada",
		LastName:  "Byron",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestAccountServiceRegisterCompanyRequiresName(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewAccountService(repository.NewUserRepository(db), testValidator(), testLogger())
	svc.(*accountService).cost = bcrypt.MinCost

	_, err := svc.Register(context.Background(), dto.RegisterRequest{Email: "hr@acme.test", Password: "password1", Role: "company"})
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)

	resp, err := svc.Register(context.Background(), dto.RegisterRequest{Email: "hr@acme.test", Password: "password1", Role: "company", CompanyName: "Acme"})
	require.NoError(t, err)

	company, err := repository.NewCompanyRepository(db).FindByUserID(context.Background(), resp.ID)
	require.NoError(t, err)
	require.Equal(t, "Acme", company.Name)
}

func TestAccountServiceRejectsAdminSelfRegistration(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewAccountService(repository.NewUserRepository(db), testValidator(), testLogger())

	_, err := svc.Register(context.Background(), dto.RegisterRequest{Email: "root@stagehub.test", Password: "password1", Role: "admin"})
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
}
