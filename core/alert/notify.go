package alert

import "time"

const (
	MetricNotificationQueue         = "notification_queue_total"
	MetricNotificationWorkerBatch   = "notification_worker_batch_total"
	MetricNotificationWorkerSendErr = "notification_worker_send_err_total"
	MetricNotificationSend          = "notification_worker_send_total"
)

// NotifyAttrs describes one delivery of a freshness alert to a route.
type NotifyAttrs struct {
	// Route is a channel name for the chat API or an incoming webhook url
	Route  string
	Secret string

	Alert      *FreshnessAlert
	IsWorkflow bool
}

// Delivery is a logged attempt to deliver an alert.
type Delivery struct {
	AlertID  string
	UniqueID string
	Channel  string
	Route    string
	Status   SendStatus
	Message  string
	SentAt   time.Time
}
