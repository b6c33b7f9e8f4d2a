package scoring

import "errors"

// Sport идентифицирует набор правил подсчёта очков.
type Sport string

const (
	SportRacquetball Sport = "racquetball"
	SportPadel       Sport = "padel"
	SportOpenIRT     Sport = "racquetball_open_irt"
)

// ErrUnsupportedSport возвращается при неизвестном виде спорта.
// Это ошибка программирования, а не пользовательский ввод.
var ErrUnsupportedSport = errors.New("unsupported sport for scoring")

// Rules описывает числовые пороги одного вида спорта.
// Все "магические числа" живут только здесь.
type Rules struct {
	// Уровень гейма (очки)
	TennisPoints   bool // падел: 0/15/30/40/Ad вместо числовых очков
	PointTarget    int  // очков для победы в гейме при числовом счёте
	TieBreakTarget int  // пониженный порог решающего сета (0 — как PointTarget)
	PointWinBy     int  // минимальный отрыв после достижения порога
	PointHardCap   int  // жёсткий потолок, 0 — играем до отрыва

	// Уровень сета (геймы)
	GamesPerSet int
	SetWinBy    int
	SetHardCap  int

	// Уровень матча
	SetsToWin int

	// Правила подачи (Open IRT)
	RallyScoring       bool // очко приносит только подающая сторона, проигрыш розыгрыша на подаче — side-out
	LoserServesNextSet bool // первым в новом сете подаёт проигравший предыдущий сет
}

var rulesBySport = map[Sport]Rules{
	SportRacquetball: {
		PointTarget:  15,
		PointWinBy:   2,
		PointHardCap: 21,
		GamesPerSet:  1,
		SetWinBy:     1,
		SetsToWin:    2,
	},
	SportPadel: {
		TennisPoints: true,
		GamesPerSet:  6,
		SetWinBy:     2,
		SetHardCap:   7,
		SetsToWin:    2,
	},
	SportOpenIRT: {
		PointTarget:        15,
		TieBreakTarget:     11,
		PointWinBy:         2,
		PointHardCap:       21,
		GamesPerSet:        1,
		SetWinBy:           1,
		SetsToWin:          2,
		RallyScoring:       true,
		LoserServesNextSet: true,
	},
}

// RulesFor возвращает таблицу правил для вида спорта.
func RulesFor(sport Sport) (Rules, error) {
	r, ok := rulesBySport[sport]
	if !ok {
		return Rules{}, ErrUnsupportedSport
	}
	return r, nil
}

// gameTarget возвращает порог очков гейма с учётом решающего сета
// (в IRT игры 1-2 идут до 15, решающая — до 11).
func (r Rules) gameTarget(setNumber int) int {
	if r.TieBreakTarget > 0 && setNumber >= 2*r.SetsToWin-1 {
		return r.TieBreakTarget
	}
	return r.PointTarget
}

// IsGameWon сообщает, выиграла ли сторона с очками a текущий гейм
// против стороны с очками b. Порог + отрыв, либо жёсткий потолок.
func IsGameWon(a, b int, r Rules, setNumber int) bool {
	target := r.gameTarget(setNumber)
	if a >= target && a-b >= r.PointWinBy {
		return true
	}
	return r.PointHardCap > 0 && a >= r.PointHardCap && a > b
}

// IsSetWon сообщает, выиграла ли сторона с геймами gamesA текущий сет.
func IsSetWon(gamesA, gamesB int, r Rules) bool {
	if gamesA >= r.GamesPerSet && gamesA-gamesB >= r.SetWinBy {
		return true
	}
	return r.SetHardCap > 0 && gamesA >= r.SetHardCap && gamesA > gamesB
}

// IsMatchWon сообщает, достигнуто ли нужное количество сетов.
func IsMatchWon(setsA, setsB int, r Rules) bool {
	_ = setsB
	return setsA >= r.SetsToWin
}
