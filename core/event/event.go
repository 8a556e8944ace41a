package event

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID         uuid.UUID
	OccurredAt time.Time
}

func NewBaseEvent() Event {
	return Event{
		ID:         uuid.New(),
		OccurredAt: time.Now().UTC(),
	}
}
