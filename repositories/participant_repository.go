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
	ErrParticipantNotFound    = errors.New("participant registration not found")
	ErrParticipantConflict    = errors.New("participant already registered")
	ErrParticipantFKViolation = errors.New("participant user or tournament invalid")
)

type ParticipantRepository interface {
	Create(ctx context.Context, participant *models.Participant) error
	GetByID(ctx context.Context, id int) (*models.Participant, error)
	GetByUserAndTournament(ctx context.Context, userID, tournamentID int) (*models.Participant, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error)
	CountByTournament(ctx context.Context, tournamentID int, status *models.ParticipantStatus) (int, error)
	UpdateStatus(ctx context.Context, id int, status models.ParticipantStatus) error
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) Create(ctx context.Context, participant *models.Participant) error {
	query := `
		INSERT INTO participants (user_id, tournament_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		participant.UserID,
		participant.TournamentID,
		participant.Status,
	).Scan(&participant.ID, &participant.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return ErrParticipantConflict
			case "23503":
				return ErrParticipantFKViolation
			}
		}
		return err
	}
	return nil
}

func (r *postgresParticipantRepository) GetByID(ctx context.Context, id int) (*models.Participant, error) {
	query := `
		SELECT id, user_id, tournament_id, status, created_at
		FROM participants
		WHERE id = $1`
	return r.scanParticipant(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresParticipantRepository) GetByUserAndTournament(ctx context.Context, userID, tournamentID int) (*models.Participant, error) {
	query := `
		SELECT id, user_id, tournament_id, status, created_at
		FROM participants
		WHERE user_id = $1 AND tournament_id = $2`
	return r.scanParticipant(r.db.QueryRowContext(ctx, query, userID, tournamentID))
}

func (r *postgresParticipantRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error) {
	// Сразу подтягиваем публичные поля игрока: список заявок без имён бесполезен.
	query := `
		SELECT p.id, p.user_id, p.tournament_id, p.status, p.created_at,
		       u.first_name, u.last_name, u.nickname
		FROM participants p
		JOIN users u ON u.id = p.user_id
		WHERE p.tournament_id = $1
		ORDER BY p.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		var p models.Participant
		var u models.User
		if scanErr := rows.Scan(
			&p.ID, &p.UserID, &p.TournamentID, &p.Status, &p.CreatedAt,
			&u.FirstName, &u.LastName, &u.Nickname,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", scanErr)
		}
		u.ID = p.UserID
		p.User = &u
		participants = append(participants, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during participant rows iteration: %w", err)
	}
	return participants, nil
}

func (r *postgresParticipantRepository) CountByTournament(ctx context.Context, tournamentID int, status *models.ParticipantStatus) (int, error) {
	var count int
	var err error
	if status != nil {
		err = r.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM participants WHERE tournament_id = $1 AND status = $2`,
			tournamentID, *status).Scan(&count)
	} else {
		err = r.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM participants WHERE tournament_id = $1`, tournamentID).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count participants for tournament %d: %w", tournamentID, err)
	}
	return count, nil
}

func (r *postgresParticipantRepository) UpdateStatus(ctx context.Context, id int, status models.ParticipantStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE participants SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) scanParticipant(row *sql.Row) (*models.Participant, error) {
	p := &models.Participant{}
	err := row.Scan(&p.ID, &p.UserID, &p.TournamentID, &p.Status, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to scan participant: %w", err)
	}
	return p, nil
}
