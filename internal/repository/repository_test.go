package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workshops/internal/config"
	"workshops/internal/database"
	"workshops/internal/ids"
	"workshops/internal/models"
	"workshops/internal/repository"
)

// openTestPool connects to the database named by WORKSHOPS_TEST_DB and migrates it.
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("WORKSHOPS_TEST_DB")
	if dsn == "" {
		t.Skip("WORKSHOPS_TEST_DB not set")
	}

	pool, err := database.Open(context.Background(), config.PostgresConfig{DSN: dsn, MaxOpen: 4})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, database.Migrate(pool))
	return pool
}

func newUser(t *testing.T, users *repository.UserRepository) models.User {
	t.Helper()
	user := models.User{
		ID:           ids.New(),
		Email:        ids.New() + "@school.test",
		PasswordHash: []byte("hash"),
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Role:         models.RoleUser,
		Status:       models.UserStatusPending,
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func newWorkshop(t *testing.T, workshops *repository.WorkshopRepository) models.Workshop {
	t.Helper()
	workshop := models.Workshop{
		ID:        ids.New(),
		Name:      "Robotica",
		Labels:    []models.Label{{Name: "techniek", Color: "#00f"}},
		Documents: []models.DocumentInfo{{Name: "a.pdf", Path: "/uploads/a.pdf", Category: models.DocumentManuals}},
		Quiz: []models.QuizQuestion{{
			Question: "2+2?",
			Options:  []models.QuizOption{{Text: "4", Correct: true}, {Text: "5"}},
		}},
		ParentalConsent: true,
	}
	require.NoError(t, workshops.Create(context.Background(), workshop))
	return workshop
}

func TestUserRepository(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	users := repository.NewUserRepository(pool)

	user := newUser(t, users)

	err := users.Create(ctx, user)
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

	found, err := users.FindByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, models.UserStatusPending, found.Status)

	require.NoError(t, users.UpdateStatus(ctx, user.ID, models.UserStatusApproved))
	found, err = users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusApproved, found.Status)

	require.NoError(t, users.SetResetCode(ctx, user.ID, []byte("code"), time.Now().Add(-time.Minute)))
	purged, err := users.ClearExpiredResetCodes(ctx, time.Now())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, purged, int64(1))

	found, err = users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, found.ResetCodeExpiresAt)

	require.NoError(t, users.Delete(ctx, user.ID))
	_, err = users.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestWorkshopRepositoryKeepsJSONColumns(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	workshops := repository.NewWorkshopRepository(pool)

	created := newWorkshop(t, workshops)

	found, err := workshops.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Labels, found.Labels)
	assert.Equal(t, created.Documents, found.Documents)
	assert.Equal(t, created.Quiz, found.Quiz)
	assert.True(t, found.ParentalConsent)

	newest, err := workshops.ListNewest(ctx, 1)
	require.NoError(t, err)
	require.Len(t, newest, 1)

	require.NoError(t, workshops.Delete(ctx, created.ID))
	_, err = workshops.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, repository.ErrWorkshopNotFound)
}

func TestReviewsAndFavorites(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	users := repository.NewUserRepository(pool)
	workshops := repository.NewWorkshopRepository(pool)
	reviews := repository.NewReviewRepository(pool)
	favorites := repository.NewFavoriteRepository(pool)

	user := newUser(t, users)
	other := newUser(t, users)
	workshop := newWorkshop(t, workshops)

	first, err := reviews.Save(ctx, models.Review{ID: ids.New(), WorkshopID: workshop.ID, UserID: user.ID, Stars: 2, Text: "ok"})
	require.NoError(t, err)

	again, err := reviews.Save(ctx, models.Review{ID: ids.New(), WorkshopID: workshop.ID, UserID: user.ID, Stars: 4, Text: "beter"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 4, again.Stars)

	latest, err := reviews.Save(ctx, models.Review{ID: ids.New(), WorkshopID: workshop.ID, UserID: other.ID, Stars: 5})
	require.NoError(t, err)

	listed, err := reviews.ListByWorkshop(ctx, workshop.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, latest.ID, listed[0].ID)
	assert.Equal(t, first.ID, listed[1].ID)

	admin := ids.New()
	_, err = reviews.Save(ctx, models.Review{ID: ids.New(), WorkshopID: workshop.ID, UserID: admin, Stars: 3})
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
	_, err = favorites.Create(ctx, models.Favorite{ID: ids.New(), UserID: admin, WorkshopID: workshop.ID})
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
	_, err = favorites.Create(ctx, models.Favorite{ID: ids.New(), UserID: user.ID, WorkshopID: ids.New()})
	assert.ErrorIs(t, err, repository.ErrWorkshopNotFound)

	avg, err := reviews.AverageForWorkshop(ctx, workshop.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, avg, 0.001)

	count, err := reviews.CountForWorkshop(ctx, workshop.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, reviews.SetAdminResponse(ctx, first.ID, "bedankt", time.Now()))
	responded, err := reviews.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, responded.AdminResponseText)
	assert.Equal(t, "bedankt", *responded.AdminResponseText)

	fav, err := favorites.Create(ctx, models.Favorite{ID: ids.New(), UserID: user.ID, WorkshopID: workshop.ID})
	require.NoError(t, err)
	dup, err := favorites.Create(ctx, models.Favorite{ID: ids.New(), UserID: user.ID, WorkshopID: workshop.ID})
	require.NoError(t, err)
	assert.Equal(t, fav.ID, dup.ID)

	list, err := favorites.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Workshop)
	assert.Equal(t, "Robotica", list[0].Workshop.Name)

	require.NoError(t, workshops.Delete(ctx, workshop.ID))
	list, err = favorites.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	err = favorites.Delete(ctx, user.ID, workshop.ID)
	assert.ErrorIs(t, err, repository.ErrFavoriteNotFound)
}
