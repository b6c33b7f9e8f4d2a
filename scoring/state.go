package scoring

// Side обозначает сторону матча.
type Side string

const (
	SidePlayer1 Side = "player1"
	SidePlayer2 Side = "player2"
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SidePlayer1 {
		return SidePlayer2
	}
	return SidePlayer1
}

// Valid reports whether the value is one of the two known sides.
func (s Side) Valid() bool {
	return s == SidePlayer1 || s == SidePlayer2
}

// Phase — фаза сессии ведения счёта.
type Phase string

const (
	PhaseInSetPlay     Phase = "in_set_play"
	PhaseSetTransition Phase = "set_transition"
	PhaseTimeoutActive Phase = "timeout_active"
	PhaseMatchComplete Phase = "match_complete"
)

// ScoreState — снимок счёта стандартного матча (ракетбол/падел).
// Очки хранятся строками: числовые для ракетбола ("0".."21"),
// теннисные метки для падела ("0","15","30","40","Ad").
type ScoreState struct {
	Player1Score string `json:"player1_score"`
	Player2Score string `json:"player2_score"`
	Player1Games int    `json:"player1_games"`
	Player2Games int    `json:"player2_games"`
	Player1Sets  int    `json:"player1_sets"`
	Player2Sets  int    `json:"player2_sets"`
	CurrentSet   int    `json:"current_set"`

	// Winner устанавливается один раз; после этого состояние терминально.
	Winner Side `json:"winner,omitempty"`
}

// NewScoreState возвращает начальное состояние: 0-0, первый сет.
func NewScoreState() ScoreState {
	return ScoreState{
		Player1Score: "0",
		Player2Score: "0",
		CurrentSet:   1,
	}
}

// OpenIRTScoreState — снимок счёта матча Open IRT.
// Очки привязаны к подающему, поэтому состояние несёт идентификаторы сторон.
type OpenIRTScoreState struct {
	Player1ID int `json:"player1_id"`
	Player2ID int `json:"player2_id"`
	ServerID  int `json:"server_id"`

	Player1Score int `json:"player1_score"`
	Player2Score int `json:"player2_score"`
	Player1Sets  int `json:"player1_sets"`
	Player2Sets  int `json:"player2_sets"`
	CurrentSet   int `json:"current_set"`

	MatchWinnerID *int `json:"match_winner_id,omitempty"`
	WonByForfeit  bool `json:"won_by_forfeit,omitempty"`

	// Транзитные флаги последнего перехода, для реакции вызывающего слоя.
	ServerChanged bool `json:"server_changed,omitempty"`
	SetWinner     Side `json:"set_winner,omitempty"`
}

// NewOpenIRTScoreState возвращает начальное состояние. Первый подающий
// определяется жеребьёвкой снаружи и передаётся сюда готовым.
func NewOpenIRTScoreState(player1ID, player2ID, firstServerID int) OpenIRTScoreState {
	return OpenIRTScoreState{
		Player1ID:  player1ID,
		Player2ID:  player2ID,
		ServerID:   firstServerID,
		CurrentSet: 1,
	}
}

// Completed reports whether the match has a winner (including forfeit).
func (s OpenIRTScoreState) Completed() bool {
	return s.MatchWinnerID != nil
}

// SideOf возвращает сторону по идентификатору участника.
func (s OpenIRTScoreState) SideOf(participantID int) (Side, bool) {
	switch participantID {
	case s.Player1ID:
		return SidePlayer1, true
	case s.Player2ID:
		return SidePlayer2, true
	}
	return "", false
}

func (s OpenIRTScoreState) idOf(side Side) int {
	if side == SidePlayer1 {
		return s.Player1ID
	}
	return s.Player2ID
}

func (s OpenIRTScoreState) scoreOf(side Side) int {
	if side == SidePlayer1 {
		return s.Player1Score
	}
	return s.Player2Score
}
