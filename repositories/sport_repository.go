package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/racquetline/racquet-system/models"
)

var ErrSportNotFound = errors.New("sport not found")

type SportRepository interface {
	GetByID(ctx context.Context, id int) (*models.Sport, error)
	GetBySlug(ctx context.Context, slug string) (*models.Sport, error)
	List(ctx context.Context) ([]*models.Sport, error)
}

type postgresSportRepository struct {
	db *sql.DB
}

func NewPostgresSportRepository(db *sql.DB) SportRepository {
	return &postgresSportRepository{db: db}
}

func (r *postgresSportRepository) GetByID(ctx context.Context, id int) (*models.Sport, error) {
	return r.scanSport(r.db.QueryRowContext(ctx,
		`SELECT id, name, slug, logo_key FROM sports WHERE id = $1`, id))
}

func (r *postgresSportRepository) GetBySlug(ctx context.Context, slug string) (*models.Sport, error) {
	return r.scanSport(r.db.QueryRowContext(ctx,
		`SELECT id, name, slug, logo_key FROM sports WHERE slug = $1`, slug))
}

func (r *postgresSportRepository) List(ctx context.Context) ([]*models.Sport, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, slug, logo_key FROM sports ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sports: %w", err)
	}
	defer rows.Close()

	sports := make([]*models.Sport, 0)
	for rows.Next() {
		var sport models.Sport
		if scanErr := rows.Scan(&sport.ID, &sport.Name, &sport.Slug, &sport.LogoKey); scanErr != nil {
			return nil, fmt.Errorf("failed to scan sport row: %w", scanErr)
		}
		sports = append(sports, &sport)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during sport rows iteration: %w", err)
	}
	return sports, nil
}

func (r *postgresSportRepository) scanSport(row *sql.Row) (*models.Sport, error) {
	sport := &models.Sport{}
	err := row.Scan(&sport.ID, &sport.Name, &sport.Slug, &sport.LogoKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSportNotFound
		}
		return nil, fmt.Errorf("failed to scan sport: %w", err)
	}
	return sport, nil
}
