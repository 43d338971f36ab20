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
)

const (
	MinStars = 1
	MaxStars = 5
)

// ReviewStats is the aggregate attached to every workshop the API returns.
type ReviewStats struct {
	Average     float64
	ReviewCount int
	Reviews     []models.Review
}

type ReviewService struct {
	reviews   ReviewStore
	workshops WorkshopStore
	notifier  notify.Notifier
	log       zerolog.Logger
	now       func() time.Time
}

func NewReviewService(reviews ReviewStore, workshops WorkshopStore, notifier notify.Notifier, log zerolog.Logger) *ReviewService {
	return &ReviewService{
		reviews:   reviews,
		workshops: workshops,
		notifier:  notifier,
		log:       log,
		now:       time.Now,
	}
}

// CreateOrUpdateReview keeps a single review per user and workshop: a second call
// overwrites the stars and text of the first.
func (s *ReviewService) CreateOrUpdateReview(ctx context.Context, userID, workshopID string, stars int, text string) (models.Review, error) {
	if stars < MinStars || stars > MaxStars {
		return models.Review{}, invalid("stars must be between %d and %d", MinStars, MaxStars)
	}
	if userID == "" || workshopID == "" {
		return models.Review{}, invalid("userId and workshopId are required")
	}
	if _, err := s.workshops.GetByID(ctx, workshopID); err != nil {
		if errors.Is(err, repository.ErrWorkshopNotFound) {
			return models.Review{}, notFound("workshop")
		}
		return models.Review{}, err
	}

	now := s.now().UTC()
	review, err := s.reviews.FindByUserAndWorkshop(ctx, userID, workshopID)
	switch {
	case err == nil:
		review.Stars = stars
		review.Text = text
		review.UpdatedAt = now
	case errors.Is(err, repository.ErrReviewNotFound):
		review = models.Review{
			ID:         ids.New(),
			WorkshopID: workshopID,
			UserID:     userID,
			Stars:      stars,
			Text:       text,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	default:
		return models.Review{}, err
	}
	saved, err := s.reviews.Save(ctx, review)
	if err != nil {
		return models.Review{}, parentNotFound(err)
	}
	return saved, nil
}

func (s *ReviewService) Get(ctx context.Context, id string) (models.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if errors.Is(err, repository.ErrReviewNotFound) {
		return models.Review{}, notFound("review")
	}
	return review, err
}

// FindByWorkshop returns the reviews most recent first.
func (s *ReviewService) FindByWorkshop(ctx context.Context, workshopID string) ([]models.Review, error) {
	return s.reviews.ListByWorkshop(ctx, workshopID)
}

func (s *ReviewService) FindByUserAndWorkshop(ctx context.Context, userID, workshopID string) (models.Review, error) {
	review, err := s.reviews.FindByUserAndWorkshop(ctx, userID, workshopID)
	if errors.Is(err, repository.ErrReviewNotFound) {
		return models.Review{}, notFound("review")
	}
	return review, err
}

// GetAverageForWorkshop is 0 for a workshop nobody reviewed.
func (s *ReviewService) GetAverageForWorkshop(ctx context.Context, workshopID string) (float64, error) {
	return s.reviews.AverageForWorkshop(ctx, workshopID)
}

func (s *ReviewService) GetCountForWorkshop(ctx context.Context, workshopID string) (int, error) {
	return s.reviews.CountForWorkshop(ctx, workshopID)
}

func (s *ReviewService) Stats(ctx context.Context, workshopID string) (ReviewStats, error) {
	avg, err := s.GetAverageForWorkshop(ctx, workshopID)
	if err != nil {
		return ReviewStats{}, err
	}
	count, err := s.GetCountForWorkshop(ctx, workshopID)
	if err != nil {
		return ReviewStats{}, err
	}
	reviews, err := s.FindByWorkshop(ctx, workshopID)
	if err != nil {
		return ReviewStats{}, err
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return ReviewStats{Average: avg, ReviewCount: count, Reviews: reviews}, nil
}

// RespondToReview mails the response to the reviewer and then stores it. The mail is
// best effort and is not undone when the write fails.
func (s *ReviewService) RespondToReview(ctx context.Context, reviewID, userEmail, workshopTitle, response string) (models.Review, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return models.Review{}, invalid("adminResponse is required")
	}
	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return models.Review{}, notFound("review")
		}
		return models.Review{}, err
	}

	if userEmail != "" {
		deliver(ctx, s.notifier, s.log, notify.ReviewResponse(userEmail, workshopTitle, response))
	}

	respondedAt := s.now().UTC()
	if err := s.reviews.SetAdminResponse(ctx, review.ID, response, respondedAt); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return models.Review{}, notFound("review")
		}
		return models.Review{}, err
	}
	review.AdminResponseText = &response
	review.AdminRespondedAt = &respondedAt
	return review, nil
}
