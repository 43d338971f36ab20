package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workshops/internal/notify"
)

func TestStatsForUnreviewedWorkshop(t *testing.T) {
	f := newFixture(t)
	w := f.workshop(t, "robots", time.Now())

	stats, err := f.reviews.Stats(context.Background(), w.ID)
	require.NoError(t, err)

	assert.Zero(t, stats.Average)
	assert.Zero(t, stats.ReviewCount)
	assert.NotNil(t, stats.Reviews)
	assert.Empty(t, stats.Reviews)
}

func TestSecondReviewOverwritesFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	w := f.workshop(t, "robots", time.Now())
	f.members(t, "user-1")

	first, err := f.reviews.CreateOrUpdateReview(ctx, "user-1", w.ID, 2, "meh")
	require.NoError(t, err)
	second, err := f.reviews.CreateOrUpdateReview(ctx, "user-1", w.ID, 5, "great after all")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, f.db.Reviews().Len())

	stored, err := f.reviews.FindByUserAndWorkshop(ctx, "user-1", w.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Stars)
	assert.Equal(t, "great after all", stored.Text)

	avg, err := f.reviews.GetAverageForWorkshop(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, avg)
}

func TestAverageAndCountAcrossUsers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	w := f.workshop(t, "robots", time.Now())
	f.members(t, "a", "b", "c")

	for i, stars := range []int{5, 4, 3} {
		_, err := f.reviews.CreateOrUpdateReview(ctx, string(rune('a'+i)), w.ID, stars, "")
		require.NoError(t, err)
	}

	stats, err := f.reviews.Stats(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, stats.Average)
	assert.Equal(t, 3, stats.ReviewCount)
	assert.Len(t, stats.Reviews, 3)
}

func TestCreateReviewValidatesStars(t *testing.T) {
	f := newFixture(t)
	w := f.workshop(t, "robots", time.Now())

	for _, stars := range []int{0, 6, -1} {
		_, err := f.reviews.CreateOrUpdateReview(context.Background(), "user-1", w.ID, stars, "")
		assert.ErrorIs(t, err, ErrInvalidInput, "stars=%d", stars)
	}
	assert.Zero(t, f.db.Reviews().Len())
}

func TestCreateReviewForUnknownWorkshop(t *testing.T) {
	f := newFixture(t)

	_, err := f.reviews.CreateOrUpdateReview(context.Background(), "user-1", "missing", 4, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateReviewForDeletedUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	w := f.workshop(t, "robots", time.Now())
	f.members(t, "user-1")
	require.NoError(t, f.db.Users().Delete(ctx, "user-1"))

	_, err := f.reviews.CreateOrUpdateReview(ctx, "user-1", w.ID, 4, "")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "user not found")
	assert.Zero(t, f.db.Reviews().Len())
}

func TestListReviewsNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	w := f.workshop(t, "robots", time.Now())
	f.members(t, "user-1", "user-2")

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	f.reviews.now = func() time.Time { return base }
	older, err := f.reviews.CreateOrUpdateReview(ctx, "user-1", w.ID, 3, "")
	require.NoError(t, err)
	f.reviews.now = func() time.Time { return base.Add(time.Millisecond) }
	newer, err := f.reviews.CreateOrUpdateReview(ctx, "user-2", w.ID, 5, "")
	require.NoError(t, err)

	reviews, err := f.reviews.FindByWorkshop(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, newer.ID, reviews[0].ID)
	assert.Equal(t, older.ID, reviews[1].ID)
}

func TestFindByUserAndWorkshopNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.reviews.FindByUserAndWorkshop(context.Background(), "user-1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRespondToReview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	w := f.workshop(t, "robots", time.Now())
	f.members(t, "user-1")
	review, err := f.reviews.CreateOrUpdateReview(ctx, "user-1", w.ID, 4, "nice")
	require.NoError(t, err)

	answered, err := f.reviews.RespondToReview(ctx, review.ID, "a@b.com", "Robots", "Bedankt!")
	require.NoError(t, err)
	require.NotNil(t, answered.AdminResponseText)
	assert.Equal(t, "Bedankt!", *answered.AdminResponseText)
	assert.NotNil(t, answered.AdminRespondedAt)

	msgs := f.notifier.ByKind(notify.KindReviewResponse)
	require.Len(t, msgs, 1)
	assert.Equal(t, "a@b.com", msgs[0].To)
	assert.Equal(t, "Bedankt!", msgs[0].Body)
	assert.Contains(t, msgs[0].Subject, "Robots")

	stored, err := f.db.Reviews().GetByID(ctx, review.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AdminResponseText)
	assert.Equal(t, "Bedankt!", *stored.AdminResponseText)
}

func TestRespondToReviewPersistsWhenMailFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.notifier.Err = errors.New("smtp down")
	w := f.workshop(t, "robots", time.Now())
	f.members(t, "user-1")
	review, err := f.reviews.CreateOrUpdateReview(ctx, "user-1", w.ID, 4, "nice")
	require.NoError(t, err)

	_, err = f.reviews.RespondToReview(ctx, review.ID, "a@b.com", "Robots", "Bedankt!")
	require.NoError(t, err)

	stored, err := f.db.Reviews().GetByID(ctx, review.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AdminResponseText)
}

func TestRespondToMissingReview(t *testing.T) {
	f := newFixture(t)

	_, err := f.reviews.RespondToReview(context.Background(), "missing", "a@b.com", "Robots", "Bedankt!")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, f.notifier.Messages())
}
