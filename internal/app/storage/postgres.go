package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx"
	_ "github.com/jackc/pgx/stdlib"

	"github.com/issafronov/qrlink/internal/app/apperrors"
	"github.com/issafronov/qrlink/internal/app/models"
)

// PostgresStorage хранит записи ссылок в PostgreSQL
type PostgresStorage struct {
	db *sql.DB
}

// NewPostgresStorage открывает соединение и готовит схему
func NewPostgresStorage(ctx context.Context, dsn string) (*PostgresStorage, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	createTableQuery := `
	CREATE TABLE IF NOT EXISTS qr_links (
	   id TEXT PRIMARY KEY,
	   seq BIGSERIAL,
	   destination_url TEXT NOT NULL,
	   created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	if _, err = db.ExecContext(ctx, createTableQuery); err != nil {
		return nil, err
	}

	return &PostgresStorage{db: db}, nil
}

func (s *PostgresStorage) Create(ctx context.Context, destinationURL string) (models.LinkRecord, error) {
	rec := models.LinkRecord{
		ID:             uuid.NewString(),
		DestinationURL: destinationURL,
	}
	err := s.db.QueryRowContext(
		ctx,
		`INSERT INTO qr_links (id, destination_url) VALUES ($1, $2) RETURNING created_at`,
		rec.ID,
		rec.DestinationURL,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return models.LinkRecord{}, wrapPgError(err)
	}
	return rec, nil
}

func (s *PostgresStorage) List(ctx context.Context) ([]models.LinkRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, destination_url, created_at FROM qr_links ORDER BY created_at DESC, seq DESC`,
	)
	if err != nil {
		return nil, wrapPgError(err)
	}
	defer rows.Close()

	var result []models.LinkRecord
	for rows.Next() {
		var rec models.LinkRecord
		if err := rows.Scan(&rec.ID, &rec.DestinationURL, &rec.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPgError(err)
	}
	return result, nil
}

func (s *PostgresStorage) GetByID(ctx context.Context, id string) (models.LinkRecord, error) {
	var rec models.LinkRecord
	err := s.db.QueryRowContext(
		ctx,
		`SELECT id, destination_url, created_at FROM qr_links WHERE id = $1`,
		id,
	).Scan(&rec.ID, &rec.DestinationURL, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.LinkRecord{}, apperrors.ErrNotFound
		}
		return models.LinkRecord{}, wrapPgError(err)
	}
	return rec, nil
}

func (s *PostgresStorage) Update(ctx context.Context, id, destinationURL string) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE qr_links SET destination_url = $1 WHERE id = $2`,
		destinationURL,
		id,
	)
	if err != nil {
		return wrapPgError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *PostgresStorage) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM qr_links WHERE id = $1`, id)
	if err != nil {
		return wrapPgError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	return nil
}

// wrapPgError сводит ошибки драйвера к таксономии приложения:
// нарушение целостности — невалидные данные, остальное — недоступность
func wrapPgError(err error) error {
	var pgErr pgx.PgError
	if errors.As(err, &pgErr) {
		if pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
			return fmt.Errorf("%w: %v", apperrors.ErrInvalidDestination, err)
		}
	}
	return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
}
