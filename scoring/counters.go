package scoring

import (
	"errors"
	"time"
)

// Лимиты вспомогательных действий Open IRT.
const (
	timeoutsPerSet     = 1
	appealsPerSet      = 3 // считаются только проигранные апелляции
	technicalFoulLimit = 3

	// TimeoutDuration — длительность тайм-аута. Отсчёт ведёт вызывающий
	// слой, ядро только фиксирует факт использования.
	TimeoutDuration = 60 * time.Second
)

var (
	// ErrTimeoutNotAvailable — тайм-аут в этом сете уже использован.
	ErrTimeoutNotAvailable = errors.New("timeout not available in this set")
	// ErrAppealsExhausted — сторона исчерпала апелляции в этом сете.
	ErrAppealsExhausted = errors.New("appeals exhausted for this set")
)

// Counters — расходуемые ресурсы сессии Open IRT. Тайм-аут и апелляции
// считаются по сетам, технические фолы — накопительно за матч.
// Сериализация в хранилище — забота вызывающего слоя.
type Counters struct {
	Timeouts   map[Side]map[int]int `json:"timeouts"`
	Appeals    map[Side]map[int]int `json:"appeals"` // проигранные апелляции по сетам
	Technicals map[Side]int         `json:"technicals"`
}

// NewCounters возвращает пустые счётчики.
func NewCounters() *Counters {
	return &Counters{
		Timeouts:   map[Side]map[int]int{SidePlayer1: {}, SidePlayer2: {}},
		Appeals:    map[Side]map[int]int{SidePlayer1: {}, SidePlayer2: {}},
		Technicals: map[Side]int{},
	}
}

// normalize восстанавливает карты после десериализации из JSON.
func (c *Counters) normalize() {
	if c.Timeouts == nil {
		c.Timeouts = map[Side]map[int]int{}
	}
	if c.Appeals == nil {
		c.Appeals = map[Side]map[int]int{}
	}
	if c.Technicals == nil {
		c.Technicals = map[Side]int{}
	}
	for _, side := range []Side{SidePlayer1, SidePlayer2} {
		if c.Timeouts[side] == nil {
			c.Timeouts[side] = map[int]int{}
		}
		if c.Appeals[side] == nil {
			c.Appeals[side] = map[int]int{}
		}
	}
}

// UseTimeout фиксирует тайм-аут стороны в сете. Повторный запрос в том же
// сете отклоняется без изменения состояния.
func (c *Counters) UseTimeout(side Side, set int) error {
	c.normalize()
	if c.Timeouts[side][set] >= timeoutsPerSet {
		return ErrTimeoutNotAvailable
	}
	c.Timeouts[side][set]++
	return nil
}

// TimeoutsLeft возвращает остаток тайм-аутов стороны в сете.
func (c *Counters) TimeoutsLeft(side Side, set int) int {
	c.normalize()
	left := timeoutsPerSet - c.Timeouts[side][set]
	if left < 0 {
		return 0
	}
	return left
}

// RecordAppeal фиксирует апелляцию. Выигранная апелляция бесплатна,
// проигранная расходует лимит. После трёх проигранных — отказ до конца сета.
func (c *Counters) RecordAppeal(side Side, set int, won bool) error {
	c.normalize()
	if c.Appeals[side][set] >= appealsPerSet {
		return ErrAppealsExhausted
	}
	if !won {
		c.Appeals[side][set]++
	}
	return nil
}

// AppealsLeft возвращает остаток апелляций стороны в сете.
func (c *Counters) AppealsLeft(side Side, set int) int {
	c.normalize()
	left := appealsPerSet - c.Appeals[side][set]
	if left < 0 {
		return 0
	}
	return left
}

// TechnicalCount возвращает накопленные технические фолы стороны.
func (c *Counters) TechnicalCount(side Side) int {
	c.normalize()
	return c.Technicals[side]
}

func (c *Counters) addTechnical(side Side) int {
	c.normalize()
	c.Technicals[side]++
	return c.Technicals[side]
}
