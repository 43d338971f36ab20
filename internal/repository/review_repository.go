package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workshops/internal/models"
)

var ErrReviewNotFound = errors.New("review not found")

const reviewColumns = `
	id, workshop_id, user_id, stars, text, admin_response_text, admin_responded_at, created_at, updated_at
`

type ReviewRepository struct {
	pool *pgxpool.Pool
}

func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Save inserts the review, or overwrites stars and text of the existing review for the
// same (user, workshop) pair. The stored row is returned.
func (r *ReviewRepository) Save(ctx context.Context, review models.Review) (models.Review, error) {
	query := `
		INSERT INTO reviews (id, workshop_id, user_id, stars, text, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (user_id, workshop_id)
		DO UPDATE SET
			stars = EXCLUDED.stars,
			text = EXCLUDED.text,
			updated_at = NOW()
		RETURNING ` + reviewColumns

	saved, err := scanReview(r.pool.QueryRow(ctx, query,
		review.ID,
		review.WorkshopID,
		review.UserID,
		review.Stars,
		review.Text,
	))
	return saved, missingParent(err)
}

func (r *ReviewRepository) GetByID(ctx context.Context, id string) (models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`
	return scanReview(r.pool.QueryRow(ctx, query, id))
}

func (r *ReviewRepository) FindByUserAndWorkshop(ctx context.Context, userID, workshopID string) (models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE user_id = $1 AND workshop_id = $2`
	return scanReview(r.pool.QueryRow(ctx, query, userID, workshopID))
}

func (r *ReviewRepository) ListByWorkshop(ctx context.Context, workshopID string) ([]models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE workshop_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.pool.Query(ctx, query, workshopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

func (r *ReviewRepository) AverageForWorkshop(ctx context.Context, workshopID string) (float64, error) {
	const query = `SELECT COALESCE(AVG(stars), 0)::float8 FROM reviews WHERE workshop_id = $1`
	var avg float64
	if err := r.pool.QueryRow(ctx, query, workshopID).Scan(&avg); err != nil {
		return 0, err
	}
	return avg, nil
}

func (r *ReviewRepository) CountForWorkshop(ctx context.Context, workshopID string) (int, error) {
	const query = `SELECT COUNT(*) FROM reviews WHERE workshop_id = $1`
	var count int
	if err := r.pool.QueryRow(ctx, query, workshopID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ReviewRepository) SetAdminResponse(ctx context.Context, id string, response string, respondedAt time.Time) error {
	const query = `
		UPDATE reviews
		SET admin_response_text = $2, admin_responded_at = $3, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, response, respondedAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func scanReview(row pgx.Row) (models.Review, error) {
	var review models.Review
	if err := row.Scan(
		&review.ID,
		&review.WorkshopID,
		&review.UserID,
		&review.Stars,
		&review.Text,
		&review.AdminResponseText,
		&review.AdminRespondedAt,
		&review.CreatedAt,
		&review.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Review{}, ErrReviewNotFound
		}
		return models.Review{}, err
	}
	return review, nil
}
