package service

import (
	"context"
	"errors"
	"time"

	"workshops/internal/ids"
	"workshops/internal/models"
	"workshops/internal/repository"
)

type FavoriteService struct {
	favorites FavoriteStore
	workshops WorkshopStore
	now       func() time.Time
}

func NewFavoriteService(favorites FavoriteStore, workshops WorkshopStore) *FavoriteService {
	return &FavoriteService{favorites: favorites, workshops: workshops, now: time.Now}
}

// AddFavorite returns the existing favorite when the pair is already bookmarked.
func (s *FavoriteService) AddFavorite(ctx context.Context, userID, workshopID string) (models.Favorite, error) {
	if userID == "" || workshopID == "" {
		return models.Favorite{}, invalid("workshopId is required")
	}
	workshop, err := s.workshops.GetByID(ctx, workshopID)
	if err != nil {
		if errors.Is(err, repository.ErrWorkshopNotFound) {
			return models.Favorite{}, notFound("workshop")
		}
		return models.Favorite{}, err
	}

	existing, err := s.favorites.Find(ctx, userID, workshopID)
	if err == nil {
		existing.Workshop = &workshop
		return existing, nil
	}
	if !errors.Is(err, repository.ErrFavoriteNotFound) {
		return models.Favorite{}, err
	}

	favorite, err := s.favorites.Create(ctx, models.Favorite{
		ID:         ids.New(),
		UserID:     userID,
		WorkshopID: workshopID,
		CreatedAt:  s.now().UTC(),
	})
	if err != nil {
		return models.Favorite{}, parentNotFound(err)
	}
	favorite.Workshop = &workshop
	return favorite, nil
}

func (s *FavoriteService) RemoveFavorite(ctx context.Context, userID, workshopID string) error {
	err := s.favorites.Delete(ctx, userID, workshopID)
	if errors.Is(err, repository.ErrFavoriteNotFound) {
		return notFound("favorite")
	}
	return err
}

func (s *FavoriteService) GetFavorites(ctx context.Context, userID string) ([]models.Favorite, error) {
	favorites, err := s.favorites.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if favorites == nil {
		favorites = []models.Favorite{}
	}
	return favorites, nil
}
