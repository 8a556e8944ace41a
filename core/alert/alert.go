package alert

import (
	"time"
)

// Alert holds the fields shared by every alert type.
type Alert struct {
	ID          string
	Status      Status
	DetectedAt  time.Time
	Alias       string
	Tags        []string
	Owners      []string
	Subscribers []string
	Timezone    string
}

func (a Alert) IsRuntimeError() bool {
	return a.Status.IsRuntimeError()
}
