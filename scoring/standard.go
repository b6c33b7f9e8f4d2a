package scoring

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidSide возвращается, если сторона не player1/player2.
var ErrInvalidSide = errors.New("invalid side")

// Теннисные метки очков падела в порядке возрастания.
const (
	padelLove      = "0"
	padelFifteen   = "15"
	padelThirty    = "30"
	padelForty     = "40"
	padelAdvantage = "Ad"
)

// CalculateScore применяет выигранное очко к состоянию стандартного матча
// и возвращает новое состояние. Чистая функция: вход не изменяется.
// Вызовы после определения победителя — ответственность вызывающего.
func CalculateScore(sport Sport, state ScoreState, pointWinner Side) (ScoreState, error) {
	rules, err := RulesFor(sport)
	if err != nil {
		return state, err
	}
	if !pointWinner.Valid() {
		return state, fmt.Errorf("%w: %q", ErrInvalidSide, pointWinner)
	}

	if rules.TennisPoints {
		return applyPadelPoint(rules, state, pointWinner)
	}
	return applyNumericPoint(rules, state, pointWinner)
}

func applyNumericPoint(rules Rules, state ScoreState, winner Side) (ScoreState, error) {
	next := state

	winnerPts, err := strconv.Atoi(next.scoreOf(winner))
	if err != nil {
		return state, fmt.Errorf("corrupt score for %s: %w", winner, err)
	}
	loserPts, err := strconv.Atoi(next.scoreOf(winner.Opponent()))
	if err != nil {
		return state, fmt.Errorf("corrupt score for %s: %w", winner.Opponent(), err)
	}

	winnerPts++
	next.setScore(winner, strconv.Itoa(winnerPts))

	if IsGameWon(winnerPts, loserPts, rules, next.CurrentSet) {
		next = closeGame(rules, next, winner)
	}
	return next, nil
}

func applyPadelPoint(rules Rules, state ScoreState, winner Side) (ScoreState, error) {
	next := state
	winnerLabel := next.scoreOf(winner)
	loserLabel := next.scoreOf(winner.Opponent())

	gameWon := false
	switch winnerLabel {
	case padelLove:
		next.setScore(winner, padelFifteen)
	case padelFifteen:
		next.setScore(winner, padelThirty)
	case padelThirty:
		next.setScore(winner, padelForty)
	case padelForty:
		switch loserLabel {
		case padelForty:
			// Ровно: очко даёт преимущество, а не гейм.
			next.setScore(winner, padelAdvantage)
		case padelAdvantage:
			// Отыгранное преимущество возвращает к ровно.
			next.setScore(winner.Opponent(), padelForty)
		default:
			gameWon = true
		}
	case padelAdvantage:
		gameWon = true
	default:
		return state, fmt.Errorf("corrupt padel score label %q for %s", winnerLabel, winner)
	}

	if gameWon {
		next = closeGame(rules, next, winner)
	}
	return next, nil
}

// closeGame закрывает гейм в пользу winner и каскадно проверяет сет и матч.
func closeGame(rules Rules, state ScoreState, winner Side) ScoreState {
	next := state
	next.Player1Score, next.Player2Score = "0", "0"

	winnerGames := next.gamesOf(winner) + 1
	next.setGames(winner, winnerGames)

	if !IsSetWon(winnerGames, next.gamesOf(winner.Opponent()), rules) {
		return next
	}

	next.Player1Games, next.Player2Games = 0, 0
	winnerSets := next.setsOf(winner) + 1
	next.setSets(winner, winnerSets)

	if IsMatchWon(winnerSets, next.setsOf(winner.Opponent()), rules) {
		// Матч окончен: сет дальше не двигаем, состояние терминально.
		next.Winner = winner
		return next
	}

	next.CurrentSet++
	return next
}

func (s ScoreState) scoreOf(side Side) string {
	if side == SidePlayer1 {
		return s.Player1Score
	}
	return s.Player2Score
}

func (s *ScoreState) setScore(side Side, score string) {
	if side == SidePlayer1 {
		s.Player1Score = score
	} else {
		s.Player2Score = score
	}
}

func (s ScoreState) gamesOf(side Side) int {
	if side == SidePlayer1 {
		return s.Player1Games
	}
	return s.Player2Games
}

func (s *ScoreState) setGames(side Side, games int) {
	if side == SidePlayer1 {
		s.Player1Games = games
	} else {
		s.Player2Games = games
	}
}

func (s ScoreState) setsOf(side Side) int {
	if side == SidePlayer1 {
		return s.Player1Sets
	}
	return s.Player2Sets
}

func (s *ScoreState) setSets(side Side, sets int) {
	if side == SidePlayer1 {
		s.Player1Sets = sets
	} else {
		s.Player2Sets = sets
	}
}
