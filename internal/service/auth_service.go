package service

import (
	"context"
	"errors"

	"workshops/internal/models"
	"workshops/internal/repository"
	"workshops/internal/security"
)

type LoginResult struct {
	Token   string
	Subject string
	Email   string
	Roles   []string
}

type AuthService struct {
	users  UserStore
	admins AdminStore
	tokens *security.TokenIssuer
}

func NewAuthService(users UserStore, admins AdminStore, tokens *security.TokenIssuer) *AuthService {
	return &AuthService{users: users, admins: admins, tokens: tokens}
}

// Login accepts administrator and user credentials, checking administrators first.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	result, err := s.LoginAdmin(ctx, email, password)
	if !errors.Is(err, ErrInvalidCredentials) {
		return result, err
	}
	return s.LoginUser(ctx, email, password)
}

func (s *AuthService) LoginAdmin(ctx context.Context, email, password string) (LoginResult, error) {
	admin, err := s.admins.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrAdminNotFound) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}
	if !passwordMatches(password, admin.PasswordHash) {
		return LoginResult{}, ErrInvalidCredentials
	}
	return s.issue(admin.ID, admin.Email, models.RoleAdmin)
}

// LoginUser only lets APPROVED users in.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrUserNotFound) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}
	if !passwordMatches(password, user.PasswordHash) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if user.Status != models.UserStatusApproved {
		return LoginResult{}, ErrAccountNotApproved
	}
	role := user.Role
	if role == "" {
		role = models.RoleUser
	}
	return s.issue(user.ID, user.Email, role)
}

func (s *AuthService) issue(subject, email string, role models.Role) (LoginResult, error) {
	roles := []string{string(role)}
	token, err := s.tokens.Generate(subject, email, roles)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, Subject: subject, Email: email, Roles: roles}, nil
}

func passwordMatches(password string, hash []byte) bool {
	ok, err := security.VerifyPassword(password, hash)
	return err == nil && ok
}
