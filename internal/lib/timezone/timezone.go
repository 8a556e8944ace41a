package timezone

import (
	"fmt"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/goto/sentinel/internal/errors"
)

const (
	EntityTimezone = "timezone"

	// DisplayLayout keeps the offset explicit, including +00:00 for UTC.
	DisplayLayout = "2006-01-02T15:04:05.999999-07:00"
)

var inputLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Converter converts UTC timestamp strings into a display timezone. Loaded
// locations are cached, a converter is safe for concurrent use.
type Converter struct {
	mu        sync.RWMutex
	locations map[string]*time.Location
}

func NewConverter() *Converter {
	return &Converter{locations: map[string]*time.Location{}}
}

func (c *Converter) Convert(utcTimestamp, timezone string) (string, error) {
	ts, err := ParseUTC(utcTimestamp)
	if err != nil {
		return "", err
	}

	loc, err := c.location(timezone)
	if err != nil {
		return "", err
	}

	return ts.In(loc).Format(DisplayLayout), nil
}

func (c *Converter) location(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}

	c.mu.RLock()
	loc, ok := c.locations[name]
	c.mu.RUnlock()
	if ok {
		return loc, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.InvalidArgument(EntityTimezone, fmt.Sprintf("unknown timezone [%s]", name))
	}

	c.mu.Lock()
	c.locations[name] = loc
	c.mu.Unlock()
	return loc, nil
}

// ParseUTC parses the timestamp formats produced by warehouse adapters, values
// without an offset are taken as UTC.
func ParseUTC(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range inputLayouts {
		ts, err := time.ParseInLocation(layout, value, time.UTC)
		if err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, errors.InvalidArgument(EntityTimezone, fmt.Sprintf("timestamp [%s] is not in a known format", value))
}
