package service

import (
	"context"
	"errors"
	"testing"

	"overmind/internal/common"
	"overmind/internal/common/security"
	"overmind/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validJoinRequest() JoinRequest {
	return JoinRequest{
		Email:     "ada@example.com",
		Password:  "correcthorse",
		Firstname: "Ada",
		Lastname:  "Lovelace",
		Pseudonym: "ada",
		Country:   "UnitedKingdom",
	}
}

func TestJoinValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*JoinRequest)
		field   string
		message string
	}{
		{"invalid email", func(r *JoinRequest) { r.Email = "nope" }, "email", "Email is invalid"},
		{"empty email", func(r *JoinRequest) { r.Email = "" }, "email", "Email is invalid"},
		{"missing password", func(r *JoinRequest) { r.Password = "" }, "password", "Password is required"},
		{"short password", func(r *JoinRequest) { r.Password = "seven77" }, "password", "Password is too short"},
		{"missing firstname", func(r *JoinRequest) { r.Firstname = "" }, "firstname", "Firstname is required"},
		{"missing lastname", func(r *JoinRequest) { r.Lastname = "" }, "lastname", "Lastname is required"},
		{"missing pseudonym", func(r *JoinRequest) { r.Pseudonym = "" }, "pseudonym", "Pseudonym is required"},
		{"unknown country", func(r *JoinRequest) { r.Country = "Atlantis" }, "country", "Country is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeUserRepo()
			svc := NewAuthService(repo)

			req := validJoinRequest()
			tt.mutate(&req)

			_, err := svc.Join(context.Background(), req)
			var vErr *common.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Equal(t, tt.message, vErr.Message)
			assert.Empty(t, repo.users, "no user row on validation failure")
		})
	}
}

func TestJoinCreatesUserWithProfile(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo)

	user, err := svc.Join(context.Background(), validJoinRequest())
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "ada@example.com", user.Email)
	require.NotNil(t, user.Profile)
	assert.Equal(t, model.RankOne, user.Profile.Rank)
	assert.Equal(t, "UnitedKingdom", user.Profile.Country)

	// The stored credential is a real bcrypt hash of the password.
	hash := repo.hashes[user.Email]
	assert.True(t, security.CheckPasswordHash("correcthorse", hash))
	assert.False(t, security.CheckPasswordHash("wrong", hash))
}

func TestJoinDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo)

	_, err := svc.Join(context.Background(), validJoinRequest())
	require.NoError(t, err)

	_, err = svc.Join(context.Background(), validJoinRequest())
	var vErr *common.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "email", vErr.Field)
	assert.Equal(t, "A user already exists with this email", vErr.Message)
	assert.Len(t, repo.users, 1, "duplicate join must not insert a second row")
}

func TestVerifyCredentials(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo)

	created, err := svc.Join(context.Background(), validJoinRequest())
	require.NoError(t, err)

	user, err := svc.VerifyCredentials(context.Background(), "ada@example.com", "correcthorse")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Empty(t, user.HashedPassword, "credential fields are stripped from the result")

	_, err = svc.VerifyCredentials(context.Background(), "ada@example.com", "wrongpassword")
	assert.True(t, errors.Is(err, common.ErrUnauthorized))

	_, err = svc.VerifyCredentials(context.Background(), "ghost@example.com", "correcthorse")
	assert.True(t, errors.Is(err, common.ErrUnauthorized))

	_, err = svc.VerifyCredentials(context.Background(), "", "")
	assert.True(t, errors.Is(err, common.ErrUnauthorized))
}
