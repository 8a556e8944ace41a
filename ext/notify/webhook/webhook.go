package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/goto/salt/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goto/sentinel/core/alert"
	"github.com/goto/sentinel/internal/errors"
	"github.com/goto/sentinel/internal/utils"
)

const (
	EntityWebhook = "webhook"

	DefaultRetryMax       = 3
	DefaultRetryBackoffMs = 500

	httpTimeout = time.Second * 10
)

var (
	notifierType        = "webhook"
	webhookQueueCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name:        alert.MetricNotificationQueue,
		ConstLabels: map[string]string{"type": notifierType},
	})

	webhookWorkerSendErrCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name:        alert.MetricNotificationWorkerSendErr,
		ConstLabels: map[string]string{"type": notifierType},
	})

	webhookWorkerSendCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name:        alert.MetricNotificationSend,
		ConstLabels: map[string]string{"type": notifierType},
	})
)

// Notifier posts a JSON summary of freshness alerts to a user endpoint. Notify
// returns only once the endpoint accepted the alert or every attempt failed.
type Notifier struct {
	client *http.Client
	logger log.Logger

	retryMax       int
	retryBackoffMs int64
}

type NotifierOption func(*Notifier)

func WithRetry(retryMax int, retryBackoffMs int64) NotifierOption {
	return func(n *Notifier) {
		n.retryMax = max(retryMax, 1)
		n.retryBackoffMs = retryBackoffMs
	}
}

func WithHTTPClient(client *http.Client) NotifierOption {
	return func(n *Notifier) {
		n.client = client
	}
}

type webhookPayload struct {
	AlertID       string   `json:"alert_id"`
	UniqueID      string   `json:"unique_id"`
	Source        string   `json:"source"`
	Status        string   `json:"status"`
	DetectedAt    string   `json:"detected_at"`
	MaxLoadedAt   *string  `json:"max_loaded_at"`
	SnapshottedAt *string  `json:"snapshotted_at"`
	TimeAgoInS    *float64 `json:"max_loaded_at_time_ago_in_s"`
	Error         string   `json:"error,omitempty"`
	Owners        []string `json:"owners"`
	Tags          []string `json:"tags"`
}

func payloadFrom(a *alert.FreshnessAlert) webhookPayload {
	payload := webhookPayload{
		AlertID:    a.ID,
		UniqueID:   a.UniqueID(),
		Source:     a.SourceName() + "." + a.Identifier(),
		Status:     a.Status.String(),
		DetectedAt: a.DetectedAt.Format(time.RFC3339),
		Owners:     a.Owners,
		Tags:       a.Tags,
	}

	switch o := a.Outcome().(type) {
	case alert.FreshnessFailure:
		payload.Error = o.Message
	case alert.FreshnessResult:
		payload.MaxLoadedAt = o.MaxLoadedAt
		payload.SnapshottedAt = o.SnapshottedAt
		if o.TimeAgo != nil {
			seconds := o.TimeAgo.Seconds()
			payload.TimeAgoInS = &seconds
		}
	}
	return payload
}

func (n *Notifier) Notify(ctx context.Context, attr alert.NotifyAttrs) error {
	if attr.Alert == nil {
		return errors.InvalidArgument(EntityWebhook, "alert is nil")
	}
	if attr.Route == "" {
		return errors.InvalidArgument(EntityWebhook, "route is empty for "+attr.Alert.UniqueID())
	}

	payloadJSON, err := json.Marshal(payloadFrom(attr.Alert))
	if err != nil {
		return errors.InternalError(EntityWebhook, "cannot encode payload for "+attr.Alert.UniqueID(), err)
	}
	webhookQueueCounter.Inc()

	err = utils.Retry(n.logger, n.retryMax, n.retryBackoffMs, func() error {
		return n.send(ctx, attr.Route, payloadJSON)
	})
	if err != nil {
		webhookWorkerSendErrCounter.Inc()
		return fmt.Errorf("webhook notifier: %s: %w", attr.Alert.UniqueID(), err)
	}

	webhookWorkerSendCounter.Inc()
	n.logger.Debug("webhook notifier: alert sent", "unique_id", attr.Alert.UniqueID(), "route", attr.Route)
	return nil
}

func (n *Notifier) send(ctx context.Context, url string, payloadJSON []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payloadJSON))
	if err != nil {
		return utils.Permanent(err)
	}
	req.Header.Add("Content-Type", "application/json")

	res, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	err = fmt.Errorf("non 2xx status code received status: %s", res.Status)
	// client errors other than throttling repeat on every attempt
	if res.StatusCode < http.StatusInternalServerError && res.StatusCode != http.StatusTooManyRequests {
		return utils.Permanent(err)
	}
	return err
}

func (*Notifier) Close() error { // nolint: unparam
	return nil
}

func NewNotifier(logger log.Logger, opts ...NotifierOption) *Notifier {
	n := &Notifier{
		client:         &http.Client{Timeout: httpTimeout},
		logger:         logger,
		retryMax:       DefaultRetryMax,
		retryBackoffMs: DefaultRetryBackoffMs,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}
