package duration

import (
	"fmt"
	"math"
)

const (
	microsPerSecond = int64(1_000_000)
	secondsPerDay   = int64(24 * 60 * 60)
	microsPerDay    = secondsPerDay * microsPerSecond
)

// Elapsed is a span of time kept with microsecond precision.
type Elapsed struct {
	micros int64
}

// maxSeconds is the largest span, in whole seconds, that fits in microseconds.
const maxSeconds = float64(math.MaxInt64 / microsPerSecond)

// Representable reports whether seconds is finite and small enough to be kept
// as an Elapsed without overflowing.
func Representable(seconds float64) bool {
	return !math.IsNaN(seconds) && !math.IsInf(seconds, 0) && math.Abs(seconds) <= maxSeconds
}

// FromSeconds expects a Representable value, anything else wraps around.
func FromSeconds(seconds float64) Elapsed {
	return Elapsed{micros: int64(math.Round(seconds * float64(microsPerSecond)))}
}

func (e Elapsed) Seconds() float64 {
	return float64(e.micros) / float64(microsPerSecond)
}

// String renders the span as [D day[s], ]H:MM:SS[.ffffff]. Negative spans borrow a whole
// day so that the clock part stays positive, e.g. -5s is "-1 day, 23:59:55".
func (e Elapsed) String() string {
	days := floorDiv(e.micros, microsPerDay)
	rest := e.micros - days*microsPerDay

	micros := rest % microsPerSecond
	totalSeconds := rest / microsPerSecond
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	clock := fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	if micros != 0 {
		clock += fmt.Sprintf(".%06d", micros)
	}
	if days == 0 {
		return clock
	}

	unit := "days"
	if days == 1 || days == -1 {
		unit = "day"
	}
	return fmt.Sprintf("%d %s, %s", days, unit, clock)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
