package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/racquetline/racquet-system/models"
	"github.com/racquetline/racquet-system/scoring"
)

var (
	ErrSessionNotFound     = errors.New("capture session not found")
	ErrSessionMatchInvalid = errors.New("capture session match conflict or invalid")
	// ErrSessionActiveConflict — на матч уже открыта активная сессия
	// (частичный уникальный индекс по match_id для незавершённых фаз).
	ErrSessionActiveConflict = errors.New("active capture session already exists for match")
)

type SessionRepository interface {
	Create(ctx context.Context, exec SQLExecutor, session *models.CaptureSession) error
	GetByID(ctx context.Context, id int) (*models.CaptureSession, error)
	GetActiveByMatch(ctx context.Context, matchID int) (*models.CaptureSession, error)
	// UpdateState сохраняет снимок состояния, счётчики и фазу после перехода.
	UpdateState(ctx context.Context, exec SQLExecutor, id int, state, counters json.RawMessage, phase scoring.Phase, timeoutUntil *time.Time) error
	CountByPhase(ctx context.Context, phase scoring.Phase) (int, error)
}

type postgresSessionRepository struct {
	db *sql.DB
}

func NewPostgresSessionRepository(db *sql.DB) SessionRepository {
	return &postgresSessionRepository{db: db}
}

const sessionColumns = `id, match_id, sport, phase, state, counters, timeout_until, created_at, updated_at`

func (r *postgresSessionRepository) Create(ctx context.Context, exec SQLExecutor, session *models.CaptureSession) error {
	query := `
		INSERT INTO capture_sessions (match_id, sport, phase, state, counters)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := exec.QueryRowContext(ctx, query,
		session.MatchID,
		session.Sport,
		session.Phase,
		session.State,
		session.Counters,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch {
			case pqErr.Code == "23505":
				return ErrSessionActiveConflict
			case pqErr.Constraint == "capture_sessions_match_id_fkey":
				return ErrSessionMatchInvalid
			}
		}
		return err
	}
	return nil
}

func (r *postgresSessionRepository) GetByID(ctx context.Context, id int) (*models.CaptureSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM capture_sessions WHERE id = $1`
	return r.scanSession(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresSessionRepository) GetActiveByMatch(ctx context.Context, matchID int) (*models.CaptureSession, error) {
	query := `SELECT ` + sessionColumns + `
		FROM capture_sessions
		WHERE match_id = $1 AND phase <> 'match_complete'
		ORDER BY created_at DESC
		LIMIT 1`
	return r.scanSession(r.db.QueryRowContext(ctx, query, matchID))
}

func (r *postgresSessionRepository) UpdateState(ctx context.Context, exec SQLExecutor, id int, state, counters json.RawMessage, phase scoring.Phase, timeoutUntil *time.Time) error {
	query := `
		UPDATE capture_sessions
		SET state = $1, counters = $2, phase = $3, timeout_until = $4, updated_at = now()
		WHERE id = $5`

	result, err := exec.ExecContext(ctx, query, state, counters, phase, timeoutUntil, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSessionNotFound)
}

func (r *postgresSessionRepository) CountByPhase(ctx context.Context, phase scoring.Phase) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM capture_sessions WHERE phase = $1`, phase).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sessions by phase: %w", err)
	}
	return count, nil
}

func (r *postgresSessionRepository) scanSession(row *sql.Row) (*models.CaptureSession, error) {
	s := &models.CaptureSession{}
	err := row.Scan(
		&s.ID,
		&s.MatchID,
		&s.Sport,
		&s.Phase,
		&s.State,
		&s.Counters,
		&s.TimeoutUntil,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to scan capture session: %w", err)
	}
	return s, nil
}
