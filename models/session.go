package models

import (
	"encoding/json"
	"time"

	"github.com/racquetline/racquet-system/scoring"
)

// CaptureSession — активная сессия ведения счёта по матчу.
// Снимок состояния и счётчики хранятся JSON-строками; ядро работает
// только с декодированными значениями (деталь слоя хранения).
type CaptureSession struct {
	ID      int           `json:"id" db:"id"`
	MatchID int           `json:"match_id" db:"match_id"`
	Sport   scoring.Sport `json:"sport" db:"sport"`
	Phase   scoring.Phase `json:"phase" db:"phase"`

	State    json.RawMessage `json:"state" db:"state"`
	Counters json.RawMessage `json:"counters,omitempty" db:"counters"`

	// TimeoutUntil — конец текущего тайм-аута; отсчёт ведёт этот слой,
	// не ядро.
	TimeoutUntil *time.Time `json:"timeout_until,omitempty" db:"timeout_until"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ScoreEvent — запись append-only журнала событий сессии.
type ScoreEvent struct {
	ID        int               `json:"id" db:"id"`
	SessionID int               `json:"session_id" db:"session_id"`
	Seq       int               `json:"seq" db:"seq"`
	Type      scoring.EventType `json:"type" db:"type"`
	Actor     scoring.Side      `json:"actor" db:"actor"`
	Payload   json.RawMessage   `json:"payload,omitempty" db:"payload"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
}
