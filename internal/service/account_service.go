package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/stagehub-api/internal/dto"
	"github.com/noah-isme/stagehub-api/internal/models"
	"github.com/noah-isme/stagehub-api/internal/repository"
)

// ErrEmailTaken indicates an account already uses the email.
var ErrEmailTaken = errors.New("email already registered")

// AccountService registers student and company accounts.
type AccountService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (dto.UserResponse, error)
}

type accountService struct {
	users     repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
	cost      int
}

// NewAccountService constructs the registration service.
func NewAccountService(users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) AccountService {
	return &accountService{
		users:     users,
		validator: validate,
		logger:    logger.With().Str("component", "account_service").Logger(),
		cost:      bcrypt.DefaultCost,
	}
}

func (s *accountService) Register(ctx context.Context, req dto.RegisterRequest) (dto.UserResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	exists, err := s.users.EmailExists(ctx, req.Email)
	if err != nil {
		return dto.UserResponse{}, err
	}
	if exists {
		return dto.UserResponse{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return dto.UserResponse{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         models.Role(req.Role),
		Active:       true,
	}

	switch user.Role {
	case models.RoleStudent:
		profile := models.StudentProfile{
			FirstName: strings.TrimSpace(req.FirstName),
			LastName:  strings.TrimSpace(req.LastName),
		}
		err = s.users.CreateStudent(ctx, &user, &profile)
	case models.RoleCompany:
		profile := models.CompanyProfile{Name: strings.TrimSpace(req.CompanyName)}
		err = s.users.CreateCompany(ctx, &user, &profile)
	default:
		return dto.UserResponse{}, ErrForbidden
	}
	if err != nil {
		s.logger.Error().Err(err).Str("role", string(user.Role)).Msg("failed to register account")
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", string(user.Role)).Msg("account registered")
	return dto.NewUserResponse(user), nil
}
