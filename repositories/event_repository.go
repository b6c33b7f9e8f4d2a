package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/racquetline/racquet-system/models"
)

var ErrEventSessionInvalid = errors.New("score event session invalid")

type EventRepository interface {
	// Append добавляет запись в журнал, присваивая следующий порядковый
	// номер внутри сессии. Вызывается в транзакции вместе с UpdateState.
	Append(ctx context.Context, exec SQLExecutor, event *models.ScoreEvent) error
	ListBySession(ctx context.Context, sessionID int) ([]*models.ScoreEvent, error)
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

func (r *postgresEventRepository) Append(ctx context.Context, exec SQLExecutor, event *models.ScoreEvent) error {
	query := `
		INSERT INTO score_events (session_id, seq, type, actor, payload)
		VALUES ($1,
		        (SELECT COALESCE(MAX(seq), 0) + 1 FROM score_events WHERE session_id = $1),
		        $2, $3, $4)
		RETURNING id, seq, created_at`

	err := exec.QueryRowContext(ctx, query,
		event.SessionID,
		event.Type,
		event.Actor,
		event.Payload,
	).Scan(&event.ID, &event.Seq, &event.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to append score event for session %d: %w", event.SessionID, err)
	}
	return nil
}

func (r *postgresEventRepository) ListBySession(ctx context.Context, sessionID int) ([]*models.ScoreEvent, error) {
	query := `
		SELECT id, session_id, seq, type, actor, payload, created_at
		FROM score_events
		WHERE session_id = $1
		ORDER BY seq ASC`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query score events for session %d: %w", sessionID, err)
	}
	defer rows.Close()

	events := make([]*models.ScoreEvent, 0)
	for rows.Next() {
		var e models.ScoreEvent
		if scanErr := rows.Scan(
			&e.ID, &e.SessionID, &e.Seq, &e.Type, &e.Actor, &e.Payload, &e.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan score event row: %w", scanErr)
		}
		events = append(events, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during score event rows iteration: %w", err)
	}
	return events, nil
}
