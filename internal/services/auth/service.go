// Package auth handles reviewer registration, login, and API key checks.
package auth

import (
	"errors"
	"strings"

	"bastion/internal/models"
	"bastion/internal/repositories"
	"bastion/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidEmail       = errors.New("invalid email address")
)

// Service authenticates reviewers and API callers.
type Service interface {
	// Register creates a reviewer account and issues a token.
	Register(req models.RegisterRequest) (*models.LoginResponse, error)

	// Login verifies credentials and issues a token.
	Login(req models.LoginRequest) (*models.LoginResponse, error)

	// VerifyAPIKey checks an X-API-Key header value.
	VerifyAPIKey(key string) error
}

type service struct {
	admins repositories.AdminRepository
}

// NewService creates an auth service.
func NewService(admins repositories.AdminRepository) Service {
	return &service{admins: admins}
}

func (s *service) Register(req models.RegisterRequest) (*models.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if len(req.Password) < 8 {
		return nil, ErrWeakPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	admin := &models.Admin{
		Email:    email,
		Password: string(hashed),
		FullName: req.FullName,
	}
	if err := s.admins.CreateAdmin(admin); err != nil {
		return nil, err
	}

	return s.respond("admin registered", admin)
}

func (s *service) Login(req models.LoginRequest) (*models.LoginResponse, error) {
	admin, err := s.admins.GetAdminByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrAdminNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.respond("login successful", admin)
}

func (s *service) VerifyAPIKey(key string) error {
	if key == "" {
		return repositories.ErrAPIKeyNotFound
	}
	_, err := s.admins.GetAPIKey(key)
	return err
}

func (s *service) respond(message string, admin *models.Admin) (*models.LoginResponse, error) {
	token, err := utils.GenerateAdminToken(admin)
	if err != nil {
		return nil, err
	}
	return &models.LoginResponse{
		Message: message,
		Token:   models.TokenResponse{AccessToken: token, TokenType: "bearer"},
		Admin:   *admin,
	}, nil
}
