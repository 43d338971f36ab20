package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"workshops/internal/ids"
	"workshops/internal/models"
	"workshops/internal/notify"
	"workshops/internal/repository"
	"workshops/internal/security"
)

const (
	MinPasswordLength   = 8
	DefaultResetCodeTTL = 15 * time.Minute
)

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	School    string
	Phone     string
}

type AdminInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type AccountOptions struct {
	AdminAddress string
	ResetCodeTTL time.Duration
}

// AccountService owns the user lifecycle: registration, moderation, password resets,
// avatars and deletion. Every transition that reaches a person sends them a mail.
type AccountService struct {
	users    UserStore
	admins   AdminStore
	uploads  *UploadService
	notifier notify.Notifier
	opts     AccountOptions
	log      zerolog.Logger

	now  func() time.Time
	hash func(string) ([]byte, error)
}

func NewAccountService(users UserStore, admins AdminStore, uploads *UploadService, notifier notify.Notifier, opts AccountOptions, log zerolog.Logger) *AccountService {
	if opts.ResetCodeTTL <= 0 {
		opts.ResetCodeTTL = DefaultResetCodeTTL
	}
	return &AccountService{
		users:    users,
		admins:   admins,
		uploads:  uploads,
		notifier: notifier,
		opts:     opts,
		log:      log,
		now:      time.Now,
		hash:     security.HashPassword,
	}
}

// RegisterRequest creates a PENDING user and tells the administrators about it.
func (s *AccountService) RegisterRequest(ctx context.Context, input RegisterInput) (models.User, error) {
	email := normalizeEmail(input.Email)
	if err := validateCredentials(email, input.Password); err != nil {
		return models.User{}, err
	}
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return models.User{}, err
	}

	hash, err := s.hash(input.Password)
	if err != nil {
		return models.User{}, err
	}
	now := s.now().UTC()
	user := models.User{
		ID:           ids.New(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		School:       strings.TrimSpace(input.School),
		Phone:        strings.TrimSpace(input.Phone),
		Role:         models.RoleUser,
		Status:       models.UserStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}

	if s.opts.AdminAddress != "" {
		deliver(ctx, s.notifier, s.log, notify.RegistrationPending(s.opts.AdminAddress, email, fullName(user.FirstName, user.LastName)))
	}
	s.log.Info().Str("user_id", user.ID).Msg("registration pending")
	return user, nil
}

// Register creates an administrator account.
func (s *AccountService) Register(ctx context.Context, input AdminInput) (models.Admin, error) {
	email := normalizeEmail(input.Email)
	if err := validateCredentials(email, input.Password); err != nil {
		return models.Admin{}, err
	}
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return models.Admin{}, err
	}

	hash, err := s.hash(input.Password)
	if err != nil {
		return models.Admin{}, err
	}
	now := s.now().UTC()
	admin := models.Admin{
		ID:           ids.New(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Role:         models.RoleAdmin,
		Status:       models.UserStatusApproved,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return models.Admin{}, ErrDuplicateEmail
		}
		return models.Admin{}, err
	}
	return admin, nil
}

// EnsureBootstrapAdmin creates the configured administrator unless it already exists.
func (s *AccountService) EnsureBootstrapAdmin(ctx context.Context, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" {
		return false, nil
	}
	_, err := s.admins.FindByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrAdminNotFound) {
		return false, err
	}
	if _, err := s.Register(ctx, AdminInput{Email: email, Password: password, FirstName: "Admin"}); err != nil {
		return false, err
	}
	return true, nil
}

func (s *AccountService) ListPending(ctx context.Context) ([]models.User, error) {
	return s.listByStatus(ctx, models.UserStatusPending)
}

func (s *AccountService) ListApproved(ctx context.Context) ([]models.User, error) {
	return s.listByStatus(ctx, models.UserStatusApproved)
}

func (s *AccountService) listByStatus(ctx context.Context, status models.UserStatus) ([]models.User, error) {
	users, err := s.users.ListByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (s *AccountService) GetUser(ctx context.Context, id string) (models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, notFound("user")
	}
	return user, err
}

// UpdateStatus approves or denies a registration. A denied user is deleted; the mail
// goes to the address read before the delete.
func (s *AccountService) UpdateStatus(ctx context.Context, id string, status models.UserStatus) (models.User, error) {
	if !status.Valid() {
		return models.User{}, invalid("unknown status %q", status)
	}
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	name := fullName(user.FirstName, user.LastName)

	switch status {
	case models.UserStatusDenied:
		if err := s.users.Delete(ctx, user.ID); err != nil {
			return models.User{}, s.mapUserErr(err)
		}
		deliver(ctx, s.notifier, s.log, notify.AccountDenied(user.Email, name))
	case models.UserStatusApproved:
		if err := s.users.UpdateStatus(ctx, user.ID, status); err != nil {
			return models.User{}, s.mapUserErr(err)
		}
		deliver(ctx, s.notifier, s.log, notify.AccountApproved(user.Email, name))
	default:
		if err := s.users.UpdateStatus(ctx, user.ID, status); err != nil {
			return models.User{}, s.mapUserErr(err)
		}
	}

	user.Status = status
	s.log.Info().Str("user_id", user.ID).Str("status", string(status)).Msg("user status updated")
	return user, nil
}

// RequestPasswordReset mails a six digit code. Unknown addresses are ignored so the
// endpoint cannot be used to probe for accounts.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	code, err := security.GenerateResetCode()
	if err != nil {
		return err
	}
	codeHash, err := s.hash(code)
	if err != nil {
		return err
	}
	expiresAt := s.now().UTC().Add(s.opts.ResetCodeTTL)
	if err := s.users.SetResetCode(ctx, user.ID, codeHash, expiresAt); err != nil {
		return s.mapUserErr(err)
	}

	deliver(ctx, s.notifier, s.log, notify.PasswordReset(user.Email, code, int(s.opts.ResetCodeTTL/time.Minute)))
	return nil
}

func (s *AccountService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrResetNotRequested
	}
	if err != nil {
		return err
	}
	if len(user.ResetCodeHash) == 0 || user.ResetCodeExpiresAt == nil {
		return ErrResetNotRequested
	}
	if s.now().After(*user.ResetCodeExpiresAt) {
		return ErrResetCodeExpired
	}
	ok, err := security.VerifyPassword(strings.TrimSpace(code), user.ResetCodeHash)
	if err != nil || !ok {
		return ErrResetCodeInvalid
	}
	if len(newPassword) < MinPasswordLength {
		return invalid("password must be at least %d characters", MinPasswordLength)
	}

	hash, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return s.mapUserErr(err)
	}
	s.log.Info().Str("user_id", user.ID).Msg("password reset")
	return nil
}

// PurgeExpiredResetCodes clears reset codes whose expiry has passed.
func (s *AccountService) PurgeExpiredResetCodes(ctx context.Context) (int64, error) {
	return s.users.ClearExpiredResetCodes(ctx, s.now().UTC())
}

func (s *AccountService) UpdateAvatar(ctx context.Context, userID string, avatar FileUpload) (models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	up, err := s.uploads.StoreImage(ctx, avatar)
	if err != nil {
		return models.User{}, err
	}
	if err := s.users.UpdateAvatar(ctx, user.ID, up.Path); err != nil {
		return models.User{}, s.mapUserErr(err)
	}
	user.AvatarURL = &up.Path
	return user, nil
}

// DeleteUser removes the account and then tries to mail its owner.
func (s *AccountService) DeleteUser(ctx context.Context, id string) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	return s.delete(ctx, user)
}

func (s *AccountService) DeleteUserByEmail(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return s.mapUserErr(err)
	}
	return s.delete(ctx, user)
}

func (s *AccountService) delete(ctx context.Context, user models.User) error {
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return s.mapUserErr(err)
	}
	deliver(ctx, s.notifier, s.log, notify.AccountDeleted(user.Email, fullName(user.FirstName, user.LastName)))
	s.log.Info().Str("user_id", user.ID).Msg("user deleted")
	return nil
}

func (s *AccountService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return ErrDuplicateEmail
	case !errors.Is(err, repository.ErrUserNotFound):
		return err
	}
	_, err = s.admins.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return ErrDuplicateEmail
	case !errors.Is(err, repository.ErrAdminNotFound):
		return err
	}
	return nil
}

func (s *AccountService) mapUserErr(err error) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return notFound("user")
	}
	return err
}

func validateCredentials(email, password string) error {
	if email == "" || !strings.Contains(email, "@") {
		return invalid("a valid email is required")
	}
	if len(password) < MinPasswordLength {
		return invalid("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func fullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
