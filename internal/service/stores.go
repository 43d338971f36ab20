package service

import (
	"context"
	"time"

	"workshops/internal/models"
	"workshops/internal/repository"
)

type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	ListByStatus(ctx context.Context, status models.UserStatus) ([]models.User, error)
	UpdateStatus(ctx context.Context, id string, status models.UserStatus) error
	UpdateAvatar(ctx context.Context, id string, avatarURL string) error
	SetResetCode(ctx context.Context, id string, codeHash []byte, expiresAt time.Time) error
	UpdatePassword(ctx context.Context, id string, passwordHash []byte) error
	ClearExpiredResetCodes(ctx context.Context, now time.Time) (int64, error)
	Delete(ctx context.Context, id string) error
}

type AdminStore interface {
	Create(ctx context.Context, admin models.Admin) error
	FindByEmail(ctx context.Context, email string) (models.Admin, error)
}

type WorkshopStore interface {
	Create(ctx context.Context, workshop models.Workshop) error
	Update(ctx context.Context, workshop models.Workshop) error
	GetByID(ctx context.Context, id string) (models.Workshop, error)
	List(ctx context.Context) ([]models.Workshop, error)
	ListNewest(ctx context.Context, limit int) ([]models.Workshop, error)
	Delete(ctx context.Context, id string) error
}

type ReviewStore interface {
	Save(ctx context.Context, review models.Review) (models.Review, error)
	GetByID(ctx context.Context, id string) (models.Review, error)
	FindByUserAndWorkshop(ctx context.Context, userID, workshopID string) (models.Review, error)
	ListByWorkshop(ctx context.Context, workshopID string) ([]models.Review, error)
	AverageForWorkshop(ctx context.Context, workshopID string) (float64, error)
	CountForWorkshop(ctx context.Context, workshopID string) (int, error)
	SetAdminResponse(ctx context.Context, id string, response string, respondedAt time.Time) error
}

type FavoriteStore interface {
	Create(ctx context.Context, favorite models.Favorite) (models.Favorite, error)
	Find(ctx context.Context, userID, workshopID string) (models.Favorite, error)
	Delete(ctx context.Context, userID, workshopID string) error
	ListByUser(ctx context.Context, userID string) ([]models.Favorite, error)
}

type StoredFileStore interface {
	Create(ctx context.Context, file models.StoredFile) error
	GetByID(ctx context.Context, id string) (models.StoredFile, error)
}

var (
	_ UserStore       = (*repository.UserRepository)(nil)
	_ AdminStore      = (*repository.AdminRepository)(nil)
	_ WorkshopStore   = (*repository.WorkshopRepository)(nil)
	_ ReviewStore     = (*repository.ReviewRepository)(nil)
	_ FavoriteStore   = (*repository.FavoriteRepository)(nil)
	_ StoredFileStore = (*repository.StoredFileRepository)(nil)
)
