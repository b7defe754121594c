package collision

import (
	"fmt"
	"time"
)

// RefreshClock периодический затвор перестроения индекса.
// Время накапливается только из переданных dt, без обращения к часам.
type RefreshClock struct {
	interval time.Duration
	elapsed  time.Duration
}

// NewRefreshClock создаёт часы с периодом interval.
// Неположительный период является нарушением предусловия: config.Validate отсекает его раньше.
func NewRefreshClock(interval time.Duration) *RefreshClock {
	if interval <= 0 {
		panic(fmt.Sprintf("collision: refresh interval must be positive, got %v", interval))
	}
	return &RefreshClock{interval: interval}
}

// Advance добавляет dt и сообщает, сработали ли часы.
// При срабатывании счётчик обнуляется, остаток сверх периода отбрасывается.
func (c *RefreshClock) Advance(dt time.Duration) bool {
	c.elapsed += dt
	if c.elapsed < c.interval {
		return false
	}
	c.elapsed = 0
	return true
}

// Elapsed время с последнего срабатывания
func (c *RefreshClock) Elapsed() time.Duration { return c.elapsed }

// Interval период часов
func (c *RefreshClock) Interval() time.Duration { return c.interval }

// Reset обнуляет накопленное время
func (c *RefreshClock) Reset() { c.elapsed = 0 }
