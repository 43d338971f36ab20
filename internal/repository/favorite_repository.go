package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workshops/internal/models"
)

var ErrFavoriteNotFound = errors.New("favorite not found")

type FavoriteRepository struct {
	pool *pgxpool.Pool
}

func NewFavoriteRepository(pool *pgxpool.Pool) *FavoriteRepository {
	return &FavoriteRepository{pool: pool}
}

// Create inserts the pair unless it already exists and returns whichever row is stored.
func (r *FavoriteRepository) Create(ctx context.Context, favorite models.Favorite) (models.Favorite, error) {
	const insert = `
		INSERT INTO favorites (id, user_id, workshop_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, workshop_id) DO NOTHING
	`
	if _, err := r.pool.Exec(ctx, insert, favorite.ID, favorite.UserID, favorite.WorkshopID); err != nil {
		return models.Favorite{}, missingParent(err)
	}
	return r.Find(ctx, favorite.UserID, favorite.WorkshopID)
}

func (r *FavoriteRepository) Find(ctx context.Context, userID, workshopID string) (models.Favorite, error) {
	const query = `
		SELECT id, user_id, workshop_id, created_at
		FROM favorites WHERE user_id = $1 AND workshop_id = $2
	`
	var favorite models.Favorite
	if err := r.pool.QueryRow(ctx, query, userID, workshopID).Scan(
		&favorite.ID,
		&favorite.UserID,
		&favorite.WorkshopID,
		&favorite.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Favorite{}, ErrFavoriteNotFound
		}
		return models.Favorite{}, err
	}
	return favorite, nil
}

func (r *FavoriteRepository) Delete(ctx context.Context, userID, workshopID string) error {
	const query = `DELETE FROM favorites WHERE user_id = $1 AND workshop_id = $2`
	cmd, err := r.pool.Exec(ctx, query, userID, workshopID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}

// ListByUser returns the user's favorites with the related workshop joined in.
func (r *FavoriteRepository) ListByUser(ctx context.Context, userID string) ([]models.Favorite, error) {
	const query = `
		SELECT f.id, f.user_id, f.workshop_id, f.created_at,
		       w.id, w.name, w.description, w.duration, w.image_path, w.files, w.labels_json,
		       w.documents_json, w.quiz_json, w.parental_consent, w.created_at
		FROM favorites f
		JOIN workshops w ON w.id = f.workshop_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var favorites []models.Favorite
	for rows.Next() {
		var favorite models.Favorite
		workshop, err := scanWorkshop(prefixedRow{
			row: rows,
			head: []any{
				&favorite.ID,
				&favorite.UserID,
				&favorite.WorkshopID,
				&favorite.CreatedAt,
			},
		})
		if err != nil {
			return nil, err
		}
		favorite.Workshop = &workshop
		favorites = append(favorites, favorite)
	}
	return favorites, rows.Err()
}

// prefixedRow lets scanWorkshop decode the trailing workshop columns of a joined row.
type prefixedRow struct {
	row  pgx.Row
	head []any
}

func (p prefixedRow) Scan(dest ...any) error {
	return p.row.Scan(append(p.head, dest...)...)
}
