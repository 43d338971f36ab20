package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"workshops/internal/models"
	"workshops/internal/security"
	"workshops/internal/service/servicetest"
	"workshops/internal/storage"
)

const adminAddress = "admin@workshops.local"

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type fixture struct {
	db        *servicetest.DB
	notifier  *servicetest.Notifier
	uploads   *UploadService
	reviews   *ReviewService
	workshops *WorkshopService
	favorites *FavoriteService
	accounts  *AccountService
	auth      *AuthService
	tokens    *security.TokenIssuer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	log := zerolog.Nop()
	db := servicetest.NewDB()
	notifier := &servicetest.Notifier{}
	tokens := security.NewTokenIssuer("test-secret", "workshops-api", "workshops-web", time.Hour)

	uploads := NewUploadService(store, db.StoredFiles(), 1<<20, log)
	reviews := NewReviewService(db.Reviews(), db.Workshops(), notifier, log)
	accounts := NewAccountService(db.Users(), db.Admins(), uploads, notifier, AccountOptions{
		AdminAddress: adminAddress,
		ResetCodeTTL: 15 * time.Minute,
	}, log)
	accounts.hash = fastHash

	return &fixture{
		db:        db,
		notifier:  notifier,
		uploads:   uploads,
		reviews:   reviews,
		workshops: NewWorkshopService(db.Workshops(), reviews, uploads, log),
		favorites: NewFavoriteService(db.Favorites(), db.Workshops()),
		accounts:  accounts,
		auth:      NewAuthService(db.Users(), db.Admins(), tokens),
		tokens:    tokens,
	}
}

func fastHash(password string) ([]byte, error) {
	return security.HashPasswordWithParams(password, security.Argon2Params{
		Time:    1,
		Memory:  8 * 1024,
		Threads: 1,
		KeyLen:  32,
		SaltLen: 16,
	})
}

func upload(name string, data []byte) FileUpload {
	u := servicetest.Upload{Name: name, Data: data}
	return FileUpload{Name: u.Name, Size: int64(len(u.Data)), Open: u.Open}
}

func pdf(name string) FileUpload {
	return upload(name, []byte("%PDF-1.4\n"+name+"\n%%EOF"))
}

func strPtr(s string) *string { return &s }

func (f *fixture) workshop(t *testing.T, name string, createdAt time.Time) models.Workshop {
	t.Helper()
	w := models.Workshop{
		ID:        "ws-" + name,
		Name:      name,
		Files:     []string{},
		Labels:    []models.Label{},
		Documents: []models.DocumentInfo{},
		CreatedAt: createdAt,
	}
	require.NoError(t, f.db.Workshops().Create(context.Background(), w))
	return w
}

// members inserts bare user rows so favorites and reviews can reference them.
func (f *fixture) members(t *testing.T, ids ...string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, f.db.Users().Create(context.Background(), models.User{
			ID:     id,
			Email:  id + "@school.test",
			Role:   models.RoleUser,
			Status: models.UserStatusApproved,
		}))
	}
}

func (f *fixture) approvedUser(t *testing.T, email, password string) models.User {
	t.Helper()
	ctx := context.Background()
	user, err := f.accounts.RegisterRequest(ctx, RegisterInput{
		Email:     email,
		Password:  password,
		FirstName: "Test",
		LastName:  "User",
	})
	require.NoError(t, err)
	user, err = f.accounts.UpdateStatus(ctx, user.ID, models.UserStatusApproved)
	require.NoError(t, err)
	return user
}
