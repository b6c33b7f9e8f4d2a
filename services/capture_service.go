package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/racquetline/racquet-system/models"
	"github.com/racquetline/racquet-system/repositories"
	"github.com/racquetline/racquet-system/scoring"
)

// StartSessionInput — параметры открытия сессии ведения счёта.
// FirstServer имеет смысл только для Open IRT; при nil подающий
// определяется жеребьёвкой.
type StartSessionInput struct {
	FirstServer *scoring.Side `json:"first_server"`
}

// RallyInput — исход одного розыгрыша.
type RallyInput struct {
	Winner scoring.Side      `json:"winner"`
	Type   scoring.EventType `json:"type"`
}

// SessionView — снимок сессии для ответов API и live-рассылки:
// состояние и счётчики уже декодированы.
type SessionView struct {
	SessionID    int               `json:"session_id"`
	MatchID      int               `json:"match_id"`
	Sport        scoring.Sport     `json:"sport"`
	Phase        scoring.Phase     `json:"phase"`
	State        json.RawMessage   `json:"state"`
	Counters     *scoring.Counters `json:"counters,omitempty"`
	TimeoutUntil *time.Time        `json:"timeout_until,omitempty"`
}

type CaptureService interface {
	StartSession(ctx context.Context, matchID int, input StartSessionInput) (*models.CaptureSession, error)
	GetSession(ctx context.Context, sessionID int) (*models.CaptureSession, error)
	GetActiveByMatch(ctx context.Context, matchID int) (*models.CaptureSession, error)
	ListEvents(ctx context.Context, sessionID int) ([]*models.ScoreEvent, error)

	// RecordRally применяет исход розыгрыша (point/ace/double_fault).
	RecordRally(ctx context.Context, sessionID int, input RallyInput) (*models.CaptureSession, error)

	// Действия ниже доступны только сессиям Open IRT.
	RecordTimeout(ctx context.Context, sessionID int, side scoring.Side) (*models.CaptureSession, error)
	RecordAppeal(ctx context.Context, sessionID int, side scoring.Side, won bool) (*models.CaptureSession, error)
	RecordTechnical(ctx context.Context, sessionID int, side scoring.Side) (*models.CaptureSession, error)
}

// txRunner выполняет fn в границах транзакции; в тестах подменяется
// сквозным вызовом без БД.
type txRunner func(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error

type captureService struct {
	runTx       txRunner
	sessionRepo repositories.SessionRepository
	eventRepo   repositories.EventRepository
	matchRepo   repositories.MatchRepository
	tournament  repositories.TournamentRepository
	sportRepo   repositories.SportRepository
	broadcaster Broadcaster
	logger      *slog.Logger
}

func NewCaptureService(
	db *sql.DB,
	sessionRepo repositories.SessionRepository,
	eventRepo repositories.EventRepository,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	sportRepo repositories.SportRepository,
	broadcaster Broadcaster,
	logger *slog.Logger,
) CaptureService {
	return &captureService{
		runTx: func(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
			return runInTx(ctx, db, fn)
		},
		sessionRepo: sessionRepo,
		eventRepo:   eventRepo,
		matchRepo:   matchRepo,
		tournament:  tournamentRepo,
		sportRepo:   sportRepo,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

func (s *captureService) StartSession(ctx context.Context, matchID int, input StartSessionInput) (*models.CaptureSession, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", matchID, err)
	}
	if match.Status != models.MatchStatusScheduled && match.Status != models.MatchStatusInProgress {
		return nil, ErrMatchNotScorable
	}

	if _, err := s.sessionRepo.GetActiveByMatch(ctx, matchID); err == nil {
		return nil, ErrSessionAlreadyActive
	} else if !errors.Is(err, repositories.ErrSessionNotFound) {
		return nil, fmt.Errorf("failed to check active session: %w", err)
	}

	sport, err := s.sportForMatch(ctx, match)
	if err != nil {
		return nil, err
	}

	session := &models.CaptureSession{
		MatchID: matchID,
		Sport:   sport,
		Phase:   scoring.PhaseInSetPlay,
	}

	if sport == scoring.SportOpenIRT {
		firstServerID, fErr := s.resolveFirstServer(match, input.FirstServer)
		if fErr != nil {
			return nil, fErr
		}
		state := scoring.NewOpenIRTScoreState(match.P1ParticipantID, match.P2ParticipantID, firstServerID)
		if session.State, err = json.Marshal(state); err != nil {
			return nil, fmt.Errorf("failed to encode initial state: %w", err)
		}
		if session.Counters, err = json.Marshal(scoring.NewCounters()); err != nil {
			return nil, fmt.Errorf("failed to encode initial counters: %w", err)
		}
	} else {
		state := scoring.NewScoreState()
		if session.State, err = json.Marshal(state); err != nil {
			return nil, fmt.Errorf("failed to encode initial state: %w", err)
		}
	}

	err = s.runTx(ctx, func(exec repositories.SQLExecutor) error {
		if createErr := s.sessionRepo.Create(ctx, exec, session); createErr != nil {
			return createErr
		}
		if match.Status == models.MatchStatusScheduled {
			return s.matchRepo.UpdateStatus(ctx, exec, matchID, models.MatchStatusInProgress)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrSessionActiveConflict) {
			return nil, ErrSessionAlreadyActive
		}
		return nil, fmt.Errorf("failed to start capture session: %w", err)
	}

	s.logger.Info("capture session started",
		slog.Int("session_id", session.ID),
		slog.Int("match_id", matchID),
		slog.String("sport", string(sport)),
	)
	s.broadcast(scoring.MessageScoreUpdated, session)
	return session, nil
}

func (s *captureService) GetSession(ctx context.Context, sessionID int) (*models.CaptureSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session %d: %w", sessionID, err)
	}
	return session, nil
}

func (s *captureService) GetActiveByMatch(ctx context.Context, matchID int) (*models.CaptureSession, error) {
	session, err := s.sessionRepo.GetActiveByMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get active session for match %d: %w", matchID, err)
	}
	return session, nil
}

func (s *captureService) ListEvents(ctx context.Context, sessionID int) ([]*models.ScoreEvent, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	events, err := s.eventRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events for session %d: %w", sessionID, err)
	}
	return events, nil
}

func (s *captureService) RecordRally(ctx context.Context, sessionID int, input RallyInput) (*models.CaptureSession, error) {
	if !input.Type.RallyEvent() {
		return nil, fmt.Errorf("%w: %q is not a rally outcome", ErrValidationFailed, input.Type)
	}
	if !input.Winner.Valid() {
		return nil, ErrInvalidSide
	}

	session, err := s.activeSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Sport == scoring.SportOpenIRT {
		return s.recordOpenIRTRally(ctx, session, input)
	}
	return s.recordStandardRally(ctx, session, input)
}

func (s *captureService) recordStandardRally(ctx context.Context, session *models.CaptureSession, input RallyInput) (*models.CaptureSession, error) {
	var state scoring.ScoreState
	if err := json.Unmarshal(session.State, &state); err != nil {
		return nil, fmt.Errorf("failed to decode session state: %w", err)
	}
	prevSets := state.Player1Sets + state.Player2Sets
	prevSet := state.CurrentSet

	next, err := scoring.CalculateScore(session.Sport, state, input.Winner)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	phase := scoring.PhaseInSetPlay
	setWon := next.Player1Sets+next.Player2Sets > prevSets
	matchWon := next.Winner != ""
	switch {
	case matchWon:
		phase = scoring.PhaseMatchComplete
	case setWon:
		phase = scoring.PhaseSetTransition
	}

	extraEvents := make([]*models.ScoreEvent, 0, 2)
	if setWon {
		extraEvents = append(extraEvents, &models.ScoreEvent{
			SessionID: session.ID,
			Type:      scoring.EventSetWon,
			Actor:     input.Winner,
			Payload:   mustPayload(map[string]interface{}{"set": prevSet}),
		})
	}
	if matchWon {
		extraEvents = append(extraEvents, &models.ScoreEvent{
			SessionID: session.ID,
			Type:      scoring.EventMatchWon,
			Actor:     next.Winner,
		})
	}

	var finalize *matchResult
	if matchWon {
		match, mErr := s.matchRepo.GetByID(ctx, session.MatchID)
		if mErr != nil {
			return nil, fmt.Errorf("failed to get match %d: %w", session.MatchID, mErr)
		}
		winnerID := match.P1ParticipantID
		if next.Winner == scoring.SidePlayer2 {
			winnerID = match.P2ParticipantID
		}
		finalize = &matchResult{
			score:    fmt.Sprintf("%d-%d", next.Player1Sets, next.Player2Sets),
			winnerID: winnerID,
		}
	}

	if err := s.persistTransition(ctx, session, next, nil, phase, nil, &models.ScoreEvent{
		SessionID: session.ID,
		Type:      input.Type,
		Actor:     input.Winner,
	}, extraEvents, finalize); err != nil {
		return nil, err
	}

	switch {
	case matchWon:
		s.broadcast(scoring.MessageMatchCompleted, session)
	case setWon:
		s.broadcast(scoring.MessageSetWon, session)
	default:
		s.broadcast(scoring.MessageScoreUpdated, session)
	}
	return session, nil
}

func (s *captureService) recordOpenIRTRally(ctx context.Context, session *models.CaptureSession, input RallyInput) (*models.CaptureSession, error) {
	state, counters, err := decodeOpenIRT(session)
	if err != nil {
		return nil, err
	}
	prevSet := state.CurrentSet

	next, err := scoring.CalculateOpenIRTScore(state, input.Winner)
	if err != nil {
		switch {
		case errors.Is(err, scoring.ErrMatchCompleted):
			return nil, ErrSessionCompleted
		case errors.Is(err, scoring.ErrInvalidSide):
			return nil, ErrInvalidSide
		}
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	setWon := next.SetWinner != ""
	matchWon := next.Completed()
	pointScored := next.Player1Score != state.Player1Score ||
		next.Player2Score != state.Player2Score || setWon

	phase := scoring.PhaseInSetPlay
	switch {
	case matchWon:
		phase = scoring.PhaseMatchComplete
	case setWon:
		phase = scoring.PhaseSetTransition
	}

	// Side-out пишется в журнал как отдельный тип события: розыгрыш без очка.
	eventType := input.Type
	if !pointScored {
		eventType = scoring.EventSideOut
	}

	extraEvents := make([]*models.ScoreEvent, 0, 2)
	if setWon {
		extraEvents = append(extraEvents, &models.ScoreEvent{
			SessionID: session.ID,
			Type:      scoring.EventSetWon,
			Actor:     next.SetWinner,
			Payload:   mustPayload(map[string]interface{}{"set": prevSet}),
		})
	}
	if matchWon {
		extraEvents = append(extraEvents, &models.ScoreEvent{
			SessionID: session.ID,
			Type:      scoring.EventMatchWon,
			Actor:     input.Winner,
		})
	}

	var finalize *matchResult
	if matchWon {
		finalize = &matchResult{
			score:    fmt.Sprintf("%d-%d", next.Player1Sets, next.Player2Sets),
			winnerID: *next.MatchWinnerID,
		}
	}

	if err := s.persistTransition(ctx, session, next, counters, phase, nil, &models.ScoreEvent{
		SessionID: session.ID,
		Type:      eventType,
		Actor:     input.Winner,
	}, extraEvents, finalize); err != nil {
		return nil, err
	}

	switch {
	case matchWon:
		s.broadcast(scoring.MessageMatchCompleted, session)
	case setWon:
		s.broadcast(scoring.MessageSetWon, session)
	default:
		s.broadcast(scoring.MessageScoreUpdated, session)
	}
	return session, nil
}

func (s *captureService) RecordTimeout(ctx context.Context, sessionID int, side scoring.Side) (*models.CaptureSession, error) {
	if !side.Valid() {
		return nil, ErrInvalidSide
	}
	session, err := s.activeSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	state, counters, err := decodeOpenIRT(session)
	if err != nil {
		return nil, err
	}

	if err := counters.UseTimeout(side, state.CurrentSet); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	until := time.Now().Add(scoring.TimeoutDuration)
	if err := s.persistTransition(ctx, session, state, counters, scoring.PhaseTimeoutActive, &until, &models.ScoreEvent{
		SessionID: session.ID,
		Type:      scoring.EventTimeout,
		Actor:     side,
		Payload:   mustPayload(map[string]interface{}{"set": state.CurrentSet, "until": until}),
	}, nil, nil); err != nil {
		return nil, err
	}

	s.broadcast(scoring.MessageTimeoutStarted, session)
	return session, nil
}

func (s *captureService) RecordAppeal(ctx context.Context, sessionID int, side scoring.Side, won bool) (*models.CaptureSession, error) {
	if !side.Valid() {
		return nil, ErrInvalidSide
	}
	session, err := s.activeSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	state, counters, err := decodeOpenIRT(session)
	if err != nil {
		return nil, err
	}

	if err := counters.RecordAppeal(side, state.CurrentSet, won); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	eventType := scoring.EventAppealLost
	if won {
		eventType = scoring.EventAppealWon
	}

	// Апелляция не меняет счёт и фазу, только счётчики и журнал.
	if err := s.persistTransition(ctx, session, state, counters, session.Phase, session.TimeoutUntil, &models.ScoreEvent{
		SessionID: session.ID,
		Type:      eventType,
		Actor:     side,
		Payload:   mustPayload(map[string]interface{}{"set": state.CurrentSet}),
	}, nil, nil); err != nil {
		return nil, err
	}

	s.broadcast(scoring.MessageScoreUpdated, session)
	return session, nil
}

func (s *captureService) RecordTechnical(ctx context.Context, sessionID int, side scoring.Side) (*models.CaptureSession, error) {
	if !side.Valid() {
		return nil, ErrInvalidSide
	}
	session, err := s.activeSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	state, counters, err := decodeOpenIRT(session)
	if err != nil {
		return nil, err
	}

	next, err := scoring.ApplyTechnicalFoul(state, counters, side)
	if err != nil {
		if errors.Is(err, scoring.ErrMatchCompleted) {
			return nil, ErrSessionCompleted
		}
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	phase := session.Phase
	extraEvents := make([]*models.ScoreEvent, 0, 1)
	var finalize *matchResult
	if next.WonByForfeit {
		phase = scoring.PhaseMatchComplete
		extraEvents = append(extraEvents, &models.ScoreEvent{
			SessionID: session.ID,
			Type:      scoring.EventForfeit,
			Actor:     side,
		})
		finalize = &matchResult{
			score:    fmt.Sprintf("%d-%d", next.Player1Sets, next.Player2Sets),
			winnerID: *next.MatchWinnerID,
		}
	}

	if err := s.persistTransition(ctx, session, next, counters, phase, session.TimeoutUntil, &models.ScoreEvent{
		SessionID: session.ID,
		Type:      scoring.EventTechnical,
		Actor:     side,
		Payload:   mustPayload(map[string]interface{}{"count": counters.TechnicalCount(side)}),
	}, extraEvents, finalize); err != nil {
		return nil, err
	}

	if next.WonByForfeit {
		s.broadcast(scoring.MessageMatchCompleted, session)
	} else {
		s.broadcast(scoring.MessageScoreUpdated, session)
	}
	return session, nil
}

// matchResult — итог матча для финализации строки в matches.
type matchResult struct {
	score    string
	winnerID int
}

// persistTransition сохраняет новое состояние сессии, пишет события журнала
// и, при завершении матча, финализирует строку матча — всё в одной транзакции.
// После успеха обновляет поля session in-place.
func (s *captureService) persistTransition(
	ctx context.Context,
	session *models.CaptureSession,
	state interface{},
	counters *scoring.Counters,
	phase scoring.Phase,
	timeoutUntil *time.Time,
	event *models.ScoreEvent,
	extraEvents []*models.ScoreEvent,
	finalize *matchResult,
) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}
	var countersJSON json.RawMessage
	if counters != nil {
		if countersJSON, err = json.Marshal(counters); err != nil {
			return fmt.Errorf("failed to encode session counters: %w", err)
		}
	}

	err = s.runTx(ctx, func(exec repositories.SQLExecutor) error {
		if txErr := s.sessionRepo.UpdateState(ctx, exec, session.ID, stateJSON, countersJSON, phase, timeoutUntil); txErr != nil {
			return txErr
		}
		if txErr := s.eventRepo.Append(ctx, exec, event); txErr != nil {
			return txErr
		}
		for _, extra := range extraEvents {
			if txErr := s.eventRepo.Append(ctx, exec, extra); txErr != nil {
				return txErr
			}
		}
		if finalize != nil {
			score := finalize.score
			winnerID := finalize.winnerID
			return s.matchRepo.UpdateScoreStatusWinner(ctx, exec, session.MatchID,
				&score, models.MatchStatusCompleted, &winnerID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to persist score transition: %w", err)
	}

	session.State = stateJSON
	session.Counters = countersJSON
	session.Phase = phase
	session.TimeoutUntil = timeoutUntil
	session.UpdatedAt = time.Now()
	return nil
}

// activeSession загружает сессию и отклоняет операции над завершённой.
// Истёкший тайм-аут снимается лениво: первое действие после дедлайна
// возвращает сессию в игру.
func (s *captureService) activeSession(ctx context.Context, sessionID int) (*models.CaptureSession, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Phase == scoring.PhaseMatchComplete {
		return nil, ErrSessionCompleted
	}
	if session.Phase == scoring.PhaseTimeoutActive &&
		(session.TimeoutUntil == nil || !time.Now().Before(*session.TimeoutUntil)) {
		session.Phase = scoring.PhaseInSetPlay
		session.TimeoutUntil = nil
	}
	return session, nil
}

func (s *captureService) sportForMatch(ctx context.Context, match *models.Match) (scoring.Sport, error) {
	tournament, err := s.tournament.GetByID(ctx, match.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return "", ErrTournamentNotFound
		}
		return "", fmt.Errorf("failed to get tournament %d: %w", match.TournamentID, err)
	}
	sport, err := s.sportRepo.GetByID(ctx, tournament.SportID)
	if err != nil {
		if errors.Is(err, repositories.ErrSportNotFound) {
			return "", ErrSportNotFound
		}
		return "", fmt.Errorf("failed to get sport %d: %w", tournament.SportID, err)
	}
	if _, err := scoring.RulesFor(scoring.Sport(sport.Slug)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	return scoring.Sport(sport.Slug), nil
}

func (s *captureService) resolveFirstServer(match *models.Match, firstServer *scoring.Side) (int, error) {
	if firstServer == nil {
		// Жеребьёвка: подающего первого сета определяет подброс монеты.
		if rand.Intn(2) == 0 {
			return match.P1ParticipantID, nil
		}
		return match.P2ParticipantID, nil
	}
	switch *firstServer {
	case scoring.SidePlayer1:
		return match.P1ParticipantID, nil
	case scoring.SidePlayer2:
		return match.P2ParticipantID, nil
	}
	return 0, ErrInvalidServer
}

// decodeOpenIRT разбирает состояние и счётчики сессии Open IRT.
// Для стандартных сессий возвращает ErrActionNotPermitted.
func decodeOpenIRT(session *models.CaptureSession) (scoring.OpenIRTScoreState, *scoring.Counters, error) {
	if session.Sport != scoring.SportOpenIRT {
		return scoring.OpenIRTScoreState{}, nil, ErrActionNotPermitted
	}
	var state scoring.OpenIRTScoreState
	if err := json.Unmarshal(session.State, &state); err != nil {
		return state, nil, fmt.Errorf("failed to decode session state: %w", err)
	}
	counters := scoring.NewCounters()
	if len(session.Counters) > 0 {
		if err := json.Unmarshal(session.Counters, counters); err != nil {
			return state, nil, fmt.Errorf("failed to decode session counters: %w", err)
		}
	}
	return state, counters, nil
}

func mustPayload(v interface{}) json.RawMessage {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return payload
}

func (s *captureService) broadcast(messageType string, session *models.CaptureSession) {
	if s.broadcaster == nil {
		return
	}
	var counters *scoring.Counters
	if len(session.Counters) > 0 {
		counters = scoring.NewCounters()
		if err := json.Unmarshal(session.Counters, counters); err != nil {
			counters = nil
		}
	}
	room := scoring.MatchRoom(session.MatchID)
	s.broadcaster.BroadcastToRoom(room, scoring.LiveMessage{
		Type:   messageType,
		RoomID: room,
		Payload: SessionView{
			SessionID:    session.ID,
			MatchID:      session.MatchID,
			Sport:        session.Sport,
			Phase:        session.Phase,
			State:        session.State,
			Counters:     counters,
			TimeoutUntil: session.TimeoutUntil,
		},
	})
}
