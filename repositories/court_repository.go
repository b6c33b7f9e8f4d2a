package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/racquetline/racquet-system/models"
)

var (
	ErrCourtNotFound    = errors.New("court not found")
	ErrCourtClubInvalid = errors.New("court club conflict or invalid")
)

type CourtRepository interface {
	Create(ctx context.Context, court *models.Court) error
	GetByID(ctx context.Context, id int) (*models.Court, error)
	ListByClub(ctx context.Context, clubID int) ([]*models.Court, error)
	Update(ctx context.Context, court *models.Court) error
	Delete(ctx context.Context, id int) error
}

type postgresCourtRepository struct {
	db *sql.DB
}

func NewPostgresCourtRepository(db *sql.DB) CourtRepository {
	return &postgresCourtRepository{db: db}
}

func (r *postgresCourtRepository) Create(ctx context.Context, court *models.Court) error {
	query := `
		INSERT INTO courts (club_id, name, surface, available)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		court.ClubID,
		court.Name,
		court.Surface,
		court.Available,
	).Scan(&court.ID, &court.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Constraint == "courts_club_id_fkey" {
			return ErrCourtClubInvalid
		}
		return err
	}
	return nil
}

func (r *postgresCourtRepository) GetByID(ctx context.Context, id int) (*models.Court, error) {
	query := `
		SELECT id, club_id, name, surface, available, created_at
		FROM courts
		WHERE id = $1`

	court := &models.Court{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&court.ID,
		&court.ClubID,
		&court.Name,
		&court.Surface,
		&court.Available,
		&court.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourtNotFound
		}
		return nil, fmt.Errorf("failed to scan court by id %d: %w", id, err)
	}
	return court, nil
}

func (r *postgresCourtRepository) ListByClub(ctx context.Context, clubID int) ([]*models.Court, error) {
	query := `
		SELECT id, club_id, name, surface, available, created_at
		FROM courts
		WHERE club_id = $1
		ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to query courts for club %d: %w", clubID, err)
	}
	defer rows.Close()

	courts := make([]*models.Court, 0)
	for rows.Next() {
		var court models.Court
		if scanErr := rows.Scan(
			&court.ID,
			&court.ClubID,
			&court.Name,
			&court.Surface,
			&court.Available,
			&court.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan court row: %w", scanErr)
		}
		courts = append(courts, &court)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during court rows iteration: %w", err)
	}
	return courts, nil
}

func (r *postgresCourtRepository) Update(ctx context.Context, court *models.Court) error {
	query := `UPDATE courts SET name = $1, surface = $2, available = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, court.Name, court.Surface, court.Available, court.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCourtNotFound)
}

func (r *postgresCourtRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM courts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCourtNotFound)
}
