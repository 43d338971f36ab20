package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workshops/internal/models"
)

var ErrStoredFileNotFound = errors.New("stored file not found")

type StoredFileRepository struct {
	pool *pgxpool.Pool
}

func NewStoredFileRepository(pool *pgxpool.Pool) *StoredFileRepository {
	return &StoredFileRepository{pool: pool}
}

func (r *StoredFileRepository) Create(ctx context.Context, file models.StoredFile) error {
	const query = `
		INSERT INTO stored_files (id, name, mime_type, data, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	_, err := r.pool.Exec(ctx, query, file.ID, file.Name, file.MimeType, file.Data)
	return err
}

func (r *StoredFileRepository) GetByID(ctx context.Context, id string) (models.StoredFile, error) {
	const query = `SELECT id, name, mime_type, data, created_at FROM stored_files WHERE id = $1`
	var file models.StoredFile
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&file.ID,
		&file.Name,
		&file.MimeType,
		&file.Data,
		&file.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.StoredFile{}, ErrStoredFileNotFound
		}
		return models.StoredFile{}, err
	}
	return file, nil
}
