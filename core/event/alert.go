package event

import (
	"encoding/json"
	"time"

	"github.com/goto/sentinel/core/alert"
)

const TypeAlertDelivered = "ALERT_DELIVERED"

type AlertDelivered struct {
	Event

	Delivery alert.Delivery
}

func NewAlertDelivered(delivery alert.Delivery) AlertDelivered {
	return AlertDelivered{
		Event:    NewBaseEvent(),
		Delivery: delivery,
	}
}

type alertDeliveredPayload struct {
	EventID    string `json:"event_id"`
	EventType  string `json:"event_type"`
	OccurredAt string `json:"occurred_at"`

	AlertID  string `json:"alert_id"`
	UniqueID string `json:"unique_id"`
	Channel  string `json:"channel"`
	Route    string `json:"route"`
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
}

func (a AlertDelivered) Bytes() ([]byte, error) {
	return json.Marshal(alertDeliveredPayload{
		EventID:    a.ID.String(),
		EventType:  TypeAlertDelivered,
		OccurredAt: a.OccurredAt.Format(time.RFC3339Nano),
		AlertID:    a.Delivery.AlertID,
		UniqueID:   a.Delivery.UniqueID,
		Channel:    a.Delivery.Channel,
		Route:      a.Delivery.Route,
		Status:     a.Delivery.Status.String(),
		Message:    a.Delivery.Message,
	})
}
