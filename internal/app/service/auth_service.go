package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"overmind/internal/common"
	"overmind/internal/common/security"
	"overmind/internal/domain/model"
	"overmind/internal/domain/repository"

	"github.com/google/uuid"
)

type AuthService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

type JoinRequest struct {
	Email     string
	Password  string
	Firstname string
	Lastname  string
	Pseudonym string
	Country   string
}

// Join validates the sign-up form field by field (first failure wins, with
// the message the form renders) and creates the user with credential and
// profile. New users start at rank one.
func (s *AuthService) Join(ctx context.Context, req JoinRequest) (*model.User, error) {
	if !validEmail(req.Email) {
		return nil, common.NewValidationError("email", "Email is invalid")
	}
	if req.Password == "" {
		return nil, common.NewValidationError("password", "Password is required")
	}
	if len(req.Password) < 8 {
		return nil, common.NewValidationError("password", "Password is too short")
	}
	if req.Firstname == "" {
		return nil, common.NewValidationError("firstname", "Firstname is required")
	}
	if req.Lastname == "" {
		return nil, common.NewValidationError("lastname", "Lastname is required")
	}
	if req.Pseudonym == "" {
		return nil, common.NewValidationError("pseudonym", "Pseudonym is required")
	}
	if !model.IsValidCountry(req.Country) {
		return nil, common.NewValidationError("country", "Country is required")
	}

	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, common.NewValidationError("email", "A user already exists with this email")
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:    uuid.NewString(),
		Email: req.Email,
		Profile: &model.Profile{
			Firstname: req.Firstname,
			Lastname:  req.Lastname,
			Pseudonym: req.Pseudonym,
			Country:   req.Country,
			Rank:      model.RankOne,
		},
	}

	if err := s.userRepo.Create(ctx, user, hashedPassword); err != nil {
		if errors.Is(err, common.ErrConflict) {
			// Lost the race to another sign-up with the same email.
			return nil, common.NewValidationError("email", "A user already exists with this email")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// VerifyCredentials checks an email/password pair against the stored
// credential. A missing user, missing credential row or mismatched password
// all surface as ErrUnauthorized; no other side effects.
func (s *AuthService) VerifyCredentials(ctx context.Context, email, password string) (*model.User, error) {
	if email == "" || password == "" {
		return nil, common.ErrUnauthorized
	}

	user, err := s.userRepo.FindByEmailWithPassword(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(password, user.HashedPassword) {
		return nil, common.ErrUnauthorized
	}

	user.HashedPassword = "" // Clear before returning
	return user, nil
}

// validEmail mirrors the original form check rather than a full RFC parse.
func validEmail(email string) bool {
	return len(email) > 3 && strings.Contains(email, "@")
}
