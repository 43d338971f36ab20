package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workshops/internal/models"
)

var ErrWorkshopNotFound = errors.New("workshop not found")

const workshopColumns = `
	id, name, description, duration, image_path, files, labels_json, documents_json,
	quiz_json, parental_consent, created_at
`

type WorkshopRepository struct {
	pool *pgxpool.Pool
}

func NewWorkshopRepository(pool *pgxpool.Pool) *WorkshopRepository {
	return &WorkshopRepository{pool: pool}
}

func (r *WorkshopRepository) Create(ctx context.Context, workshop models.Workshop) error {
	cols, err := encodeWorkshopJSON(workshop)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO workshops (
			id, name, description, duration, image_path, files, labels_json, documents_json,
			quiz_json, parental_consent, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6::jsonb, $7::jsonb, $8::jsonb, $9::jsonb, $10, $11
		)
	`
	_, err = r.pool.Exec(ctx, query,
		workshop.ID,
		workshop.Name,
		workshop.Description,
		workshop.Duration,
		workshop.ImagePath,
		cols.files,
		cols.labels,
		cols.documents,
		cols.quiz,
		workshop.ParentalConsent,
		workshop.CreatedAt,
	)
	return err
}

func (r *WorkshopRepository) Update(ctx context.Context, workshop models.Workshop) error {
	cols, err := encodeWorkshopJSON(workshop)
	if err != nil {
		return err
	}

	const query = `
		UPDATE workshops
		SET name = $2,
		    description = $3,
		    duration = $4,
		    image_path = $5,
		    files = $6::jsonb,
		    labels_json = $7::jsonb,
		    documents_json = $8::jsonb,
		    quiz_json = $9::jsonb,
		    parental_consent = $10
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query,
		workshop.ID,
		workshop.Name,
		workshop.Description,
		workshop.Duration,
		workshop.ImagePath,
		cols.files,
		cols.labels,
		cols.documents,
		cols.quiz,
		workshop.ParentalConsent,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrWorkshopNotFound
	}
	return nil
}

func (r *WorkshopRepository) GetByID(ctx context.Context, id string) (models.Workshop, error) {
	query := `SELECT ` + workshopColumns + ` FROM workshops WHERE id = $1`
	return scanWorkshop(r.pool.QueryRow(ctx, query, id))
}

func (r *WorkshopRepository) List(ctx context.Context) ([]models.Workshop, error) {
	query := `SELECT ` + workshopColumns + ` FROM workshops ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query)
}

func (r *WorkshopRepository) ListNewest(ctx context.Context, limit int) ([]models.Workshop, error) {
	query := `SELECT ` + workshopColumns + ` FROM workshops ORDER BY created_at DESC, id DESC LIMIT $1`
	return r.list(ctx, query, limit)
}

func (r *WorkshopRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM workshops WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrWorkshopNotFound
	}
	return nil
}

func (r *WorkshopRepository) list(ctx context.Context, query string, args ...any) ([]models.Workshop, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workshops []models.Workshop
	for rows.Next() {
		workshop, err := scanWorkshop(rows)
		if err != nil {
			return nil, err
		}
		workshops = append(workshops, workshop)
	}
	return workshops, rows.Err()
}

type workshopJSON struct {
	files     string
	labels    string
	documents string
	quiz      *string
}

func encodeWorkshopJSON(w models.Workshop) (workshopJSON, error) {
	var out workshopJSON

	enc := func(v any) (string, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	var err error
	if out.files, err = enc(nonNil(w.Files)); err != nil {
		return out, fmt.Errorf("encode files: %w", err)
	}
	if out.labels, err = enc(nonNil(w.Labels)); err != nil {
		return out, fmt.Errorf("encode labels: %w", err)
	}
	if out.documents, err = enc(nonNil(w.Documents)); err != nil {
		return out, fmt.Errorf("encode documents: %w", err)
	}
	if w.Quiz != nil {
		quiz, err := enc(w.Quiz)
		if err != nil {
			return out, fmt.Errorf("encode quiz: %w", err)
		}
		out.quiz = &quiz
	}
	return out, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func scanWorkshop(row pgx.Row) (models.Workshop, error) {
	var (
		workshop                       models.Workshop
		files, labels, documents, quiz []byte
	)
	if err := row.Scan(
		&workshop.ID,
		&workshop.Name,
		&workshop.Description,
		&workshop.Duration,
		&workshop.ImagePath,
		&files,
		&labels,
		&documents,
		&quiz,
		&workshop.ParentalConsent,
		&workshop.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Workshop{}, ErrWorkshopNotFound
		}
		return models.Workshop{}, err
	}

	if err := json.Unmarshal(files, &workshop.Files); err != nil {
		return models.Workshop{}, fmt.Errorf("decode files: %w", err)
	}
	if err := json.Unmarshal(labels, &workshop.Labels); err != nil {
		return models.Workshop{}, fmt.Errorf("decode labels: %w", err)
	}
	if err := json.Unmarshal(documents, &workshop.Documents); err != nil {
		return models.Workshop{}, fmt.Errorf("decode documents: %w", err)
	}
	if len(quiz) > 0 {
		if err := json.Unmarshal(quiz, &workshop.Quiz); err != nil {
			return models.Workshop{}, fmt.Errorf("decode quiz: %w", err)
		}
	}
	return workshop, nil
}
