package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"training-portal/backend/models"
	"training-portal/backend/utils"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const minPasswordLength = 8

// AuthService manages learner accounts for the token-issuing boundary.
type AuthService struct {
	store LearnerStore
	log   *utils.Logger
}

func NewAuthService(store LearnerStore, baseLog *utils.Logger) *AuthService {
	return &AuthService{store: store, log: baseLog.With("service", "AuthService")}
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.Learner, error) {
	const op = "register"
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalid(op, "username is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid(op, "email %q is not valid", email)
	}
	if len(password) < minPasswordLength {
		return nil, invalid(op, "password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	learner := &models.Learner{
		Username:     username,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		Role:         utils.RoleLearner,
	}
	if err := s.store.CreateLearner(ctx, learner); err != nil {
		return nil, storeWriteError(op, err)
	}
	s.log.Info("learner registered", "learner_id", learner.ID)
	return learner, nil
}

// Login returns ErrInvalidCredentials for both unknown users and wrong
// passwords.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.Learner, error) {
	learner, err := s.store.FindLearnerByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, transport("login", err)
	}
	if learner == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(learner.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return learner, nil
}
