package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racquetline/racquet-system/models"
	"github.com/racquetline/racquet-system/repositories"
	"github.com/racquetline/racquet-system/scoring"
)

const (
	testP1ParticipantID = 101
	testP2ParticipantID = 202
)

// --- Фейковые репозитории ---

type fakeSessionRepo struct {
	sessions map[int]*models.CaptureSession
	nextID   int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[int]*models.CaptureSession{}, nextID: 1}
}

func (f *fakeSessionRepo) Create(_ context.Context, _ repositories.SQLExecutor, session *models.CaptureSession) error {
	for _, s := range f.sessions {
		if s.MatchID == session.MatchID && s.Phase != scoring.PhaseMatchComplete {
			return repositories.ErrSessionActiveConflict
		}
	}
	session.ID = f.nextID
	f.nextID++
	session.CreatedAt = time.Now()
	session.UpdatedAt = session.CreatedAt
	stored := *session
	f.sessions[session.ID] = &stored
	return nil
}

func (f *fakeSessionRepo) GetByID(_ context.Context, id int) (*models.CaptureSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, repositories.ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSessionRepo) GetActiveByMatch(_ context.Context, matchID int) (*models.CaptureSession, error) {
	for _, s := range f.sessions {
		if s.MatchID == matchID && s.Phase != scoring.PhaseMatchComplete {
			copied := *s
			return &copied, nil
		}
	}
	return nil, repositories.ErrSessionNotFound
}

func (f *fakeSessionRepo) UpdateState(_ context.Context, _ repositories.SQLExecutor, id int, state, counters json.RawMessage, phase scoring.Phase, timeoutUntil *time.Time) error {
	s, ok := f.sessions[id]
	if !ok {
		return repositories.ErrSessionNotFound
	}
	s.State = state
	s.Counters = counters
	s.Phase = phase
	s.TimeoutUntil = timeoutUntil
	s.UpdatedAt = time.Now()
	return nil
}

func (f *fakeSessionRepo) CountByPhase(_ context.Context, phase scoring.Phase) (int, error) {
	count := 0
	for _, s := range f.sessions {
		if s.Phase == phase {
			count++
		}
	}
	return count, nil
}

type fakeEventRepo struct {
	events []*models.ScoreEvent
}

func (f *fakeEventRepo) Append(_ context.Context, _ repositories.SQLExecutor, event *models.ScoreEvent) error {
	seq := 0
	for _, e := range f.events {
		if e.SessionID == event.SessionID {
			seq = e.Seq
		}
	}
	event.Seq = seq + 1
	event.ID = len(f.events) + 1
	event.CreatedAt = time.Now()
	stored := *event
	f.events = append(f.events, &stored)
	return nil
}

func (f *fakeEventRepo) ListBySession(_ context.Context, sessionID int) ([]*models.ScoreEvent, error) {
	out := make([]*models.ScoreEvent, 0)
	for _, e := range f.events {
		if e.SessionID == sessionID {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) typesFor(sessionID int) []scoring.EventType {
	types := make([]scoring.EventType, 0)
	for _, e := range f.events {
		if e.SessionID == sessionID {
			types = append(types, e.Type)
		}
	}
	return types
}

type fakeMatchRepo struct {
	matches map[int]*models.Match
}

func (f *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	match.ID = len(f.matches) + 1
	stored := *match
	f.matches[match.ID] = &stored
	return nil
}

func (f *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	m, ok := f.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *m
	return &copied, nil
}

func (f *fakeMatchRepo) ListByTournament(_ context.Context, tournamentID int, status *models.MatchStatus) ([]*models.Match, error) {
	out := make([]*models.Match, 0)
	for _, m := range f.matches {
		if m.TournamentID != tournamentID {
			continue
		}
		if status != nil && m.Status != *status {
			continue
		}
		copied := *m
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeMatchRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.MatchStatus) error {
	m, ok := f.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Status = status
	return nil
}

func (f *fakeMatchRepo) UpdateScoreStatusWinner(_ context.Context, _ repositories.SQLExecutor, id int, score *string, status models.MatchStatus, winnerParticipantID *int) error {
	m, ok := f.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Score = score
	m.Status = status
	m.WinnerParticipantID = winnerParticipantID
	return nil
}

func (f *fakeMatchRepo) Delete(_ context.Context, id int) error {
	delete(f.matches, id)
	return nil
}

func (f *fakeMatchRepo) Count(_ context.Context, _ *models.MatchStatus) (int, error) {
	return len(f.matches), nil
}

func (f *fakeMatchRepo) CountByOrganizer(_ context.Context, _ int, _ *models.MatchStatus) (int, error) {
	return 0, nil
}

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
}

func (f *fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	t.ID = len(f.tournaments) + 1
	stored := *t
	f.tournaments[t.ID] = &stored
	return nil
}

func (f *fakeTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	t, ok := f.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTournamentRepo) List(_ context.Context, _ repositories.TournamentListFilter) ([]*models.Tournament, error) {
	return nil, nil
}

func (f *fakeTournamentRepo) Update(_ context.Context, _ *models.Tournament) error { return nil }

func (f *fakeTournamentRepo) UpdateStatus(_ context.Context, id int, status models.TournamentStatus) error {
	t, ok := f.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (f *fakeTournamentRepo) UpdateLogoKey(_ context.Context, _ int, _ *string) error { return nil }
func (f *fakeTournamentRepo) Delete(_ context.Context, _ int) error                   { return nil }

func (f *fakeTournamentRepo) Count(_ context.Context, _ *models.TournamentStatus) (int, error) {
	return len(f.tournaments), nil
}

func (f *fakeTournamentRepo) CountByOrganizer(_ context.Context, _ int, _ *models.TournamentStatus) (int, error) {
	return 0, nil
}

func (f *fakeTournamentRepo) ListStatusCandidates(_ context.Context, _ time.Time) ([]*models.Tournament, error) {
	return nil, nil
}

type fakeSportRepo struct {
	sports map[int]*models.Sport
}

func (f *fakeSportRepo) GetByID(_ context.Context, id int) (*models.Sport, error) {
	s, ok := f.sports[id]
	if !ok {
		return nil, repositories.ErrSportNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSportRepo) GetBySlug(_ context.Context, slug string) (*models.Sport, error) {
	for _, s := range f.sports {
		if s.Slug == slug {
			copied := *s
			return &copied, nil
		}
	}
	return nil, repositories.ErrSportNotFound
}

func (f *fakeSportRepo) List(_ context.Context) ([]*models.Sport, error) { return nil, nil }

type fakeBroadcaster struct {
	messages []scoring.LiveMessage
}

func (f *fakeBroadcaster) BroadcastToRoom(_ string, message interface{}) {
	if m, ok := message.(scoring.LiveMessage); ok {
		f.messages = append(f.messages, m)
	}
}

func (f *fakeBroadcaster) lastType() string {
	if len(f.messages) == 0 {
		return ""
	}
	return f.messages[len(f.messages)-1].Type
}

// --- Сборка тестового сервиса ---

type captureFixture struct {
	svc         *captureService
	sessions    *fakeSessionRepo
	events      *fakeEventRepo
	matches     *fakeMatchRepo
	broadcaster *fakeBroadcaster
}

func newCaptureFixture(sportSlug string) *captureFixture {
	sessions := newFakeSessionRepo()
	events := &fakeEventRepo{}
	matches := &fakeMatchRepo{matches: map[int]*models.Match{
		1: {
			ID:              1,
			TournamentID:    1,
			P1ParticipantID: testP1ParticipantID,
			P2ParticipantID: testP2ParticipantID,
			Status:          models.MatchStatusScheduled,
			MatchTime:       time.Now(),
		},
	}}
	tournaments := &fakeTournamentRepo{tournaments: map[int]*models.Tournament{
		1: {ID: 1, SportID: 1, ClubID: 1, OrganizerID: 1, Status: models.StatusActive},
	}}
	sports := &fakeSportRepo{sports: map[int]*models.Sport{
		1: {ID: 1, Name: "Test Sport", Slug: sportSlug},
	}}
	broadcaster := &fakeBroadcaster{}

	svc := &captureService{
		runTx: func(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
			return fn(nil)
		},
		sessionRepo: sessions,
		eventRepo:   events,
		matchRepo:   matches,
		tournament:  tournaments,
		sportRepo:   sports,
		broadcaster: broadcaster,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return &captureFixture{
		svc:         svc,
		sessions:    sessions,
		events:      events,
		matches:     matches,
		broadcaster: broadcaster,
	}
}

func firstServer(side scoring.Side) StartSessionInput {
	return StartSessionInput{FirstServer: &side}
}

func decodeIRTState(t *testing.T, session *models.CaptureSession) scoring.OpenIRTScoreState {
	t.Helper()
	var state scoring.OpenIRTScoreState
	require.NoError(t, json.Unmarshal(session.State, &state))
	return state
}

// --- Тесты ---

func TestStartSession_OpenIRT(t *testing.T) {
	fx := newCaptureFixture(string(scoring.SportOpenIRT))

	session, err := fx.svc.StartSession(context.Background(), 1, firstServer(scoring.SidePlayer1))
	require.NoError(t, err)

	assert.Equal(t, scoring.SportOpenIRT, session.Sport)
	assert.Equal(t, scoring.PhaseInSetPlay, session.Phase)
	assert.NotEmpty(t, session.Counters)

	state := decodeIRTState(t, session)
	assert.Equal(t, testP1ParticipantID, state.ServerID)
	assert.Equal(t, 1, state.CurrentSet)

	match, err := fx.matches.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusInProgress, match.Status)
	assert.Equal(t, scoring.MessageScoreUpdated, fx.broadcaster.lastType())
}

func TestStartSession_CoinFlipPicksParticipant(t *testing.T) {
	fx := newCaptureFixture(string(scoring.SportOpenIRT))

	session, err := fx.svc.StartSession(context.Background(), 1, StartSessionInput{})
	require.NoError(t, err)

	state := decodeIRTState(t, session)
	assert.Contains(t, []int{testP1ParticipantID, testP2ParticipantID}, state.ServerID)
}

func TestStartSession_ActiveConflict(t *testing.T) {
	fx := newCaptureFixture(string(scoring.SportOpenIRT))

	_, err := fx.svc.StartSession(context.Background(), 1, firstServer(scoring.SidePlayer1))
	require.NoError(t, err)

	_, err = fx.svc.StartSession(context.Background(), 1, firstServer(scoring.SidePlayer1))
	assert.ErrorIs(t, err, ErrSessionAlreadyActive)
}

func TestStartSession_MatchNotScorable(t *testing.T) {
	fx := newCaptureFixture(string(scoring.SportOpenIRT))
	fx.matches.matches[1].Status = models.MatchStatusCompleted

	_, err := fx.svc.StartSession(context.Background(), 1, firstServer(scoring.SidePlayer1))
	assert.ErrorIs(t, err, ErrMatchNotScorable)
}

func TestRecordRally_OpenIRTSideOutThenPoint(t *testing.T) {
	fx := newCaptureFixture(string(scoring.SportOpenIRT))
	ctx := context.Background()

	session, err := fx.svc.StartSession(ctx, 1, firstServer(scoring.SidePlayer1))
	require.NoError(t, err)

	// Принимающий выигрывает розыгрыш: side-out, счёт не меняется.
	session, err = fx.svc.RecordRally(ctx, session.ID, RallyInput{
		Winner: scoring.SidePlayer2,
		Type:   scoring.EventPoint,
	})
	require.NoError(t, err)

	state := decodeIRTState(t, session)
	assert.Equal(t, testP2ParticipantID, state.ServerID)
	assert.Equal(t, 0, state.Player1Score)
	assert.Equal(t, 0, state.Player2Score)
	assert.Contains(t, fx.events.typesFor(session.ID), scoring.EventSideOut)

	// Теперь подаёт второй игрок и выигрывает розыгрыш: очко.
	session, err = fx.svc.RecordRally(ctx, session.ID, RallyInput{
		Winner: scoring.SidePlayer2,
		Type:   scoring.EventAce,
	})
	require.NoError(t, err)

	state = decodeIRTState(t, session)
	assert.Equal(t, 1, state.Player2Score)
	assert.Contains(t, fx.events.typesFor(session.ID), scoring.EventAce)
	assert.Equal(t, scoring.MessageScoreUpdated, fx.broadcaster.lastType())
}

func TestRecordRally_StandardRacquetball(t *testing.T) {
	fx := newCaptureFixture(string(scoring.SportRacquetball))
	ctx := context.Background()

	session, err := fx.svc.StartSession(ctx, 1, StartSessionInput{})
	require.NoError(t, err)
	assert.Empty(t, session.Counters)

	session, err = fx.svc.RecordRally(ctx, session.ID, RallyInput{
		Winner: scoring.SidePlayer1,
		Type:   scoring.EventPoint,
	})
	require.NoError(t, err)

	var state scoring.ScoreState
	require.NoError(t, json.Unmarshal(session.State, &state))
	assert.Equal(t, "1", state.Player1Score)
	assert.Equal(t, "0", state.Player2Score)
}

func TestRecordRally_RejectsNonRallyType(t *testing.T) {
	fx := newCaptureFixture(string(scoring.SportOpenIRT))
	ctx := context.Background()

	session, err := fx.svc.StartSession(ctx, 1, firstServer(scoring.SidePlayer1))
	require.NoError(t, err)

	_, err = fx.svc.RecordRally(ctx, session.ID, RallyInput{
		Winner: scoring.SidePlayer1,
		Type:   scoring.EventTimeout,
	})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestRecordTimeout_LimitPerSet(t *testing.T) {
	fx := newCaptureFixture(string(scoring.SportOpenIRT))
	ctx := context.Background()

	session, err := fx.svc.StartSession(ctx, 1, firstServer(scoring.SidePlayer1))
	require.NoError(t, err)

	session, err = fx.svc.RecordTimeout(ctx, session.ID, scoring.SidePlayer1)
	require.NoError(t, err)
	assert.Equal(t, scoring.PhaseTimeoutActive, session.Phase)
	require.NotNil(t, session.TimeoutUntil)
	assert.True(t, session.TimeoutUntil.After(time.Now()))
	assert.Equal(t, scoring.MessageTimeoutStarted, fx.broadcaster.lastType())

	// Второй тайм-аут той же стороны в том же сете запрещён.
	_, err = fx.svc.RecordTimeout(ctx, session.ID, scoring.SidePlayer1)
	assert.ErrorIs(t, err, ErrValidationFailed)

	// У соперника свой лимит.
	_, err = fx.svc.RecordTimeout(ctx, session.ID, scoring.SidePlayer2)
	require.NoError(t, err)
}

func TestRecordTimeout_RejectedForStandardSession(t *testing.T) {
	fx := newCaptureFixture(string(scoring.SportRacquetball))
	ctx := context.Background()

	session, err := fx.svc.StartSession(ctx, 1, StartSessionInput{})
	require.NoError(t, err)

	_, err = fx.svc.RecordTimeout(ctx, session.ID, scoring.SidePlayer1)
	assert.ErrorIs(t, err, ErrActionNotPermitted)
}

func TestRecordAppeal_OnlyLostAppealsCount(t *testing.T) {
	fx := newCaptureFixture(string(scoring.SportOpenIRT))
	ctx := context.Background()

	session, err := fx.svc.StartSession(ctx, 1, firstServer(scoring.SidePlayer1))
	require.NoError(t, err)

	// Выигранные апелляции не расходуют лимит.
	for i := 0; i < 5; i++ {
		_, err = fx.svc.RecordAppeal(ctx, session.ID, scoring.SidePlayer1, true)
		require.NoError(t, err)
	}

	for i := 0; i < 3; i++ {
		_, err = fx.svc.RecordAppeal(ctx, session.ID, scoring.SidePlayer1, false)
		require.NoError(t, err)
	}

	_, err = fx.svc.RecordAppeal(ctx, session.ID, scoring.SidePlayer1, false)
	assert.ErrorIs(t, err, ErrValidationFailed)

	types := fx.events.typesFor(session.ID)
	assert.Contains(t, types, scoring.EventAppealWon)
	assert.Contains(t, types, scoring.EventAppealLost)
}

func TestRecordTechnical_ThirdFoulForfeitsMatch(t *testing.T) {
	fx := newCaptureFixture(string(scoring.SportOpenIRT))
	ctx := context.Background()

	session, err := fx.svc.StartSession(ctx, 1, firstServer(scoring.SidePlayer1))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		session, err = fx.svc.RecordTechnical(ctx, session.ID, scoring.SidePlayer1)
		require.NoError(t, err)
		assert.NotEqual(t, scoring.PhaseMatchComplete, session.Phase)
	}

	session, err = fx.svc.RecordTechnical(ctx, session.ID, scoring.SidePlayer1)
	require.NoError(t, err)

	assert.Equal(t, scoring.PhaseMatchComplete, session.Phase)
	state := decodeIRTState(t, session)
	require.NotNil(t, state.MatchWinnerID)
	assert.Equal(t, testP2ParticipantID, *state.MatchWinnerID)
	assert.True(t, state.WonByForfeit)

	match, err := fx.matches.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCompleted, match.Status)
	require.NotNil(t, match.WinnerParticipantID)
	assert.Equal(t, testP2ParticipantID, *match.WinnerParticipantID)

	assert.Contains(t, fx.events.typesFor(session.ID), scoring.EventForfeit)
	assert.Equal(t, scoring.MessageMatchCompleted, fx.broadcaster.lastType())

	// Завершённая сессия больше не принимает события.
	_, err = fx.svc.RecordRally(ctx, session.ID, RallyInput{
		Winner: scoring.SidePlayer1,
		Type:   scoring.EventPoint,
	})
	assert.ErrorIs(t, err, ErrSessionCompleted)
}

func TestRecordRally_OpenIRTMatchCompletionFinalizesMatch(t *testing.T) {
	fx := newCaptureFixture(string(scoring.SportOpenIRT))
	ctx := context.Background()

	session, err := fx.svc.StartSession(ctx, 1, firstServer(scoring.SidePlayer1))
	require.NoError(t, err)

	// Первый игрок берёт два сета подряд на подаче.
	rules, err := scoring.RulesFor(scoring.SportOpenIRT)
	require.NoError(t, err)
	for set := 0; set < rules.SetsToWin; set++ {
		for point := 0; point < rules.PointTarget; point++ {
			session, err = fx.svc.RecordRally(ctx, session.ID, RallyInput{
				Winner: scoring.SidePlayer1,
				Type:   scoring.EventPoint,
			})
			require.NoError(t, err)
		}
		if set == 0 {
			// Между сетами подача у проигравшего; вернём её первому игроку.
			session, err = fx.svc.RecordRally(ctx, session.ID, RallyInput{
				Winner: scoring.SidePlayer1,
				Type:   scoring.EventPoint,
			})
			require.NoError(t, err)
		}
	}

	assert.Equal(t, scoring.PhaseMatchComplete, session.Phase)
	state := decodeIRTState(t, session)
	require.NotNil(t, state.MatchWinnerID)
	assert.Equal(t, testP1ParticipantID, *state.MatchWinnerID)

	match, err := fx.matches.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCompleted, match.Status)
	require.NotNil(t, match.Score)
	assert.Equal(t, "2-0", *match.Score)

	types := fx.events.typesFor(session.ID)
	assert.Contains(t, types, scoring.EventSetWon)
	assert.Contains(t, types, scoring.EventMatchWon)
}
