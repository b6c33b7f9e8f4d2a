package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/racquetline/racquet-system/models"
)

var (
	ErrTournamentNotFound         = errors.New("tournament not found")
	ErrTournamentNameConflict     = errors.New("tournament name conflict")
	ErrTournamentRelationsInvalid = errors.New("tournament sport, club or organizer invalid")
)

// TournamentListFilter — необязательные фильтры листинга турниров.
type TournamentListFilter struct {
	Status      *models.TournamentStatus
	SportID     *int
	OrganizerID *int
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter TournamentListFilter) ([]*models.Tournament, error)
	Update(ctx context.Context, tournament *models.Tournament) error
	UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context, status *models.TournamentStatus) (int, error)
	CountByOrganizer(ctx context.Context, organizerID int, status *models.TournamentStatus) (int, error)
	// ListStatusCandidates возвращает турниры, чей статус может смениться
	// по датам (для планировщика).
	ListStatusCandidates(ctx context.Context, now time.Time) ([]*models.Tournament, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `id, name, description, sport_id, club_id, organizer_id, reg_date, start_date, end_date, status, max_participants, logo_key, created_at`

func (r *postgresTournamentRepository) Create(ctx context.Context, tournament *models.Tournament) error {
	query := `
		INSERT INTO tournaments
			(name, description, sport_id, club_id, organizer_id, reg_date, start_date, end_date, status, max_participants)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		tournament.Name,
		tournament.Description,
		tournament.SportID,
		tournament.ClubID,
		tournament.OrganizerID,
		tournament.RegDate,
		tournament.StartDate,
		tournament.EndDate,
		tournament.Status,
		tournament.MaxParticipants,
	).Scan(&tournament.ID, &tournament.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	t, err := r.scanTournament(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament by id %d: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter TournamentListFilter) ([]*models.Tournament, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + tournamentColumns + ` FROM tournaments WHERE 1=1`)

	args := []interface{}{}
	placeholderIndex := 1

	appendFilter := func(column string, value interface{}) {
		queryBuilder.WriteString(" AND " + column + " = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, value)
		placeholderIndex++
	}

	if filter.Status != nil {
		appendFilter("status", *filter.Status)
	}
	if filter.SportID != nil {
		appendFilter("sport_id", *filter.SportID)
	}
	if filter.OrganizerID != nil {
		appendFilter("organizer_id", *filter.OrganizerID)
	}

	queryBuilder.WriteString(" ORDER BY start_date ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	defer rows.Close()

	return r.collectTournaments(rows)
}

func (r *postgresTournamentRepository) Update(ctx context.Context, tournament *models.Tournament) error {
	query := `
		UPDATE tournaments
		SET name = $1, description = $2, reg_date = $3, start_date = $4, end_date = $5, max_participants = $6
		WHERE id = $7`

	result, err := r.db.ExecContext(ctx, query,
		tournament.Name,
		tournament.Description,
		tournament.RegDate,
		tournament.StartDate,
		tournament.EndDate,
		tournament.MaxParticipants,
		tournament.ID,
	)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE tournaments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE tournaments SET logo_key = $1 WHERE id = $2`, logoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Count(ctx context.Context, status *models.TournamentStatus) (int, error) {
	var count int
	var err error
	if status != nil {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tournaments WHERE status = $1`, *status).Scan(&count)
	} else {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tournaments`).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count tournaments: %w", err)
	}
	return count, nil
}

func (r *postgresTournamentRepository) CountByOrganizer(ctx context.Context, organizerID int, status *models.TournamentStatus) (int, error) {
	var count int
	var err error
	if status != nil {
		err = r.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM tournaments WHERE organizer_id = $1 AND status = $2`,
			organizerID, *status,
		).Scan(&count)
	} else {
		err = r.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM tournaments WHERE organizer_id = $1`,
			organizerID,
		).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count tournaments for organizer %d: %w", organizerID, err)
	}
	return count, nil
}

func (r *postgresTournamentRepository) ListStatusCandidates(ctx context.Context, now time.Time) ([]*models.Tournament, error) {
	// Турниры в нетерминальных статусах, у которых подошла одна из дат.
	query := `SELECT ` + tournamentColumns + `
		FROM tournaments
		WHERE status IN ('soon', 'registration', 'active')
		  AND (reg_date <= $1 OR start_date <= $1 OR end_date <= $1)`

	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query status candidates: %w", err)
	}
	defer rows.Close()

	return r.collectTournaments(rows)
}

func (r *postgresTournamentRepository) scanTournament(row *sql.Row) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := row.Scan(
		&t.ID, &t.Name, &t.Description, &t.SportID, &t.ClubID, &t.OrganizerID,
		&t.RegDate, &t.StartDate, &t.EndDate, &t.Status, &t.MaxParticipants,
		&t.LogoKey, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) collectTournaments(rows *sql.Rows) ([]*models.Tournament, error) {
	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := rows.Scan(
			&t.ID, &t.Name, &t.Description, &t.SportID, &t.ClubID, &t.OrganizerID,
			&t.RegDate, &t.StartDate, &t.EndDate, &t.Status, &t.MaxParticipants,
			&t.LogoKey, &t.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "tournaments_name_key":
			return ErrTournamentNameConflict
		case "tournaments_sport_id_fkey", "tournaments_club_id_fkey", "tournaments_organizer_id_fkey":
			return ErrTournamentRelationsInvalid
		}
	}
	return err
}
