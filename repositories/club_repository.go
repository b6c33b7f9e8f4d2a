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
	ErrClubNotFound     = errors.New("club not found")
	ErrClubNameConflict = errors.New("club name conflict")
	ErrClubOwnerInvalid = errors.New("club owner conflict or invalid")
)

type ClubRepository interface {
	Create(ctx context.Context, club *models.Club) error
	GetByID(ctx context.Context, id int) (*models.Club, error)
	List(ctx context.Context) ([]*models.Club, error)
	Update(ctx context.Context, club *models.Club) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
}

type postgresClubRepository struct {
	db *sql.DB
}

func NewPostgresClubRepository(db *sql.DB) ClubRepository {
	return &postgresClubRepository{db: db}
}

func (r *postgresClubRepository) Create(ctx context.Context, club *models.Club) error {
	query := `
		INSERT INTO clubs (name, city, address, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		club.Name,
		club.City,
		club.Address,
		club.OwnerID,
	).Scan(&club.ID, &club.CreatedAt)

	return r.handleClubError(err)
}

func (r *postgresClubRepository) GetByID(ctx context.Context, id int) (*models.Club, error) {
	query := `
		SELECT id, name, city, address, owner_id, logo_key, created_at
		FROM clubs
		WHERE id = $1`

	club := &models.Club{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&club.ID,
		&club.Name,
		&club.City,
		&club.Address,
		&club.OwnerID,
		&club.LogoKey,
		&club.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to scan club by id %d: %w", id, err)
	}
	return club, nil
}

func (r *postgresClubRepository) List(ctx context.Context) ([]*models.Club, error) {
	query := `
		SELECT id, name, city, address, owner_id, logo_key, created_at
		FROM clubs
		ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query clubs: %w", err)
	}
	defer rows.Close()

	clubs := make([]*models.Club, 0)
	for rows.Next() {
		var club models.Club
		if scanErr := rows.Scan(
			&club.ID,
			&club.Name,
			&club.City,
			&club.Address,
			&club.OwnerID,
			&club.LogoKey,
			&club.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan club row: %w", scanErr)
		}
		clubs = append(clubs, &club)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during club rows iteration: %w", err)
	}
	return clubs, nil
}

func (r *postgresClubRepository) Update(ctx context.Context, club *models.Club) error {
	query := `UPDATE clubs SET name = $1, city = $2, address = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, club.Name, club.City, club.Address, club.ID)
	if err != nil {
		return r.handleClubError(err)
	}
	return checkAffectedRows(result, ErrClubNotFound)
}

func (r *postgresClubRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	query := `UPDATE clubs SET logo_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, logoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrClubNotFound)
}

func (r *postgresClubRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clubs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrClubNotFound)
}

func (r *postgresClubRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clubs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count clubs: %w", err)
	}
	return count, nil
}

func (r *postgresClubRepository) handleClubError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "clubs_name_key":
			return ErrClubNameConflict
		case "clubs_owner_id_fkey":
			return ErrClubOwnerInvalid
		}
	}
	return err
}
