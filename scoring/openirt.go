package scoring

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownServer — server_id не совпадает ни с одной из сторон.
	ErrUnknownServer = errors.New("server id does not match either side")
	// ErrMatchCompleted — переход запрошен после завершения матча.
	ErrMatchCompleted = errors.New("match already completed")
)

// CalculateOpenIRTScore применяет исход розыгрыша к состоянию матча Open IRT.
// Очко засчитывается только подающей стороне; проигрыш розыгрыша на подаче —
// side-out: подача переходит сопернику, счёт не меняется.
func CalculateOpenIRTScore(state OpenIRTScoreState, rallyWinner Side) (OpenIRTScoreState, error) {
	rules, err := RulesFor(SportOpenIRT)
	if err != nil {
		return state, err
	}
	if !rallyWinner.Valid() {
		return state, fmt.Errorf("%w: %q", ErrInvalidSide, rallyWinner)
	}
	if state.Completed() {
		return state, ErrMatchCompleted
	}

	serverSide, ok := state.SideOf(state.ServerID)
	if !ok {
		return state, fmt.Errorf("%w: %d", ErrUnknownServer, state.ServerID)
	}

	next := state
	next.ServerChanged = false
	next.SetWinner = ""

	if rallyWinner != serverSide {
		// Side-out: только смена подачи.
		next.ServerID = next.idOf(rallyWinner)
		next.ServerChanged = true
		return next, nil
	}

	if rallyWinner == SidePlayer1 {
		next.Player1Score++
	} else {
		next.Player2Score++
	}

	// В IRT нет отдельного слоя геймов: счёт очков и есть счёт сета.
	if !IsGameWon(next.scoreOf(rallyWinner), next.scoreOf(rallyWinner.Opponent()), rules, next.CurrentSet) {
		return next, nil
	}

	next.SetWinner = rallyWinner
	next.Player1Score, next.Player2Score = 0, 0

	var winnerSets int
	if rallyWinner == SidePlayer1 {
		next.Player1Sets++
		winnerSets = next.Player1Sets
	} else {
		next.Player2Sets++
		winnerSets = next.Player2Sets
	}

	if IsMatchWon(winnerSets, next.setsOf(rallyWinner.Opponent()), rules) {
		winnerID := next.idOf(rallyWinner)
		next.MatchWinnerID = &winnerID
		return next, nil
	}

	next.CurrentSet++
	if rules.LoserServesNextSet {
		// Явное правило назначения подачи нового сета, а не случайный перенос.
		loserID := next.idOf(rallyWinner.Opponent())
		next.ServerChanged = loserID != state.ServerID
		next.ServerID = loserID
	}
	return next, nil
}

func (s OpenIRTScoreState) setsOf(side Side) int {
	if side == SidePlayer1 {
		return s.Player1Sets
	}
	return s.Player2Sets
}

// ApplyTechnicalFoul снимает одно очко с провинившейся стороны (не ниже нуля)
// и учитывает фол в счётчике. Третий фол завершает матч форфейтом в пользу
// соперника, минуя обычную проверку сетов.
func ApplyTechnicalFoul(state OpenIRTScoreState, counters *Counters, side Side) (OpenIRTScoreState, error) {
	if !side.Valid() {
		return state, fmt.Errorf("%w: %q", ErrInvalidSide, side)
	}
	if state.Completed() {
		return state, ErrMatchCompleted
	}

	next := state
	next.ServerChanged = false
	next.SetWinner = ""

	if side == SidePlayer1 {
		if next.Player1Score > 0 {
			next.Player1Score--
		}
	} else {
		if next.Player2Score > 0 {
			next.Player2Score--
		}
	}

	total := counters.addTechnical(side)
	if total >= technicalFoulLimit {
		winnerID := next.idOf(side.Opponent())
		next.MatchWinnerID = &winnerID
		next.WonByForfeit = true
	}
	return next, nil
}
