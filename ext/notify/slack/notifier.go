package slack

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goto/salt/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/slack-go/slack"

	"github.com/goto/sentinel/core/alert"
	"github.com/goto/sentinel/internal/errors"
	"github.com/goto/sentinel/internal/utils"
)

const (
	DefaultRetryMax       = 3
	DefaultRetryBackoffMs = 500

	httpTimeout = time.Second * 10
)

var (
	notifierType      = "slack"
	slackQueueCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name:        alert.MetricNotificationQueue,
		ConstLabels: map[string]string{"type": notifierType},
	})
	slackWorkerSendErrCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name:        alert.MetricNotificationWorkerSendErr,
		ConstLabels: map[string]string{"type": notifierType},
	})
	slackWorkerSendCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name:        alert.MetricNotificationSend,
		ConstLabels: map[string]string{"type": notifierType},
	})
)

// Notifier renders freshness alerts and posts them either to an incoming
// webhook or to a channel through the chat API.
type Notifier struct {
	apiURL     string
	renderer   *FreshnessRenderer
	httpClient *http.Client
	logger     log.Logger

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
		n.httpClient = client
	}
}

func (n *Notifier) Notify(ctx context.Context, attr alert.NotifyAttrs) error {
	if attr.Alert == nil {
		return errors.InvalidArgument(EntitySlack, "alert is nil")
	}
	if attr.Route == "" {
		return errors.InvalidArgument(EntitySlack, "route is empty for "+attr.Alert.UniqueID())
	}

	if !isWebhookRoute(attr.Route) && attr.Secret == "" {
		return errors.InvalidArgument(EntitySlack, "token is required for channel route "+attr.Route)
	}

	message, err := n.renderer.Render(attr.Alert, attr.IsWorkflow)
	if err != nil {
		return err
	}
	slackQueueCounter.Inc()

	err = utils.Retry(n.logger, n.retryMax, n.retryBackoffMs, func() error {
		return n.send(ctx, attr, message)
	})
	if err != nil {
		slackWorkerSendErrCounter.Inc()
		return fmt.Errorf("slack notifier: %s: %w", attr.Alert.UniqueID(), err)
	}

	slackWorkerSendCounter.Inc()
	n.logger.Debug("slack notifier: alert sent", "unique_id", attr.Alert.UniqueID(), "route", attr.Route)
	return nil
}

func (n *Notifier) send(ctx context.Context, attr alert.NotifyAttrs, message *Message) error {
	if isWebhookRoute(attr.Route) {
		return slack.PostWebhookCustomHTTPContext(ctx, attr.Route, n.httpClient, message.WebhookMessage())
	}

	client := slack.New(attr.Secret, slack.OptionAPIURL(n.apiURL), slack.OptionHTTPClient(n.httpClient))
	_, _, err := client.PostMessageContext(ctx, attr.Route, message.MsgOptions()...)

	var apiErr slack.SlackErrorResponse
	if errors.As(err, &apiErr) && permanentAPIErrors[apiErr.Err] {
		return utils.Permanent(err)
	}
	return err
}

// permanentAPIErrors are chat API error codes that no retry can resolve.
var permanentAPIErrors = map[string]bool{
	"channel_not_found": true,
	"not_in_channel":    true,
	"is_archived":       true,
	"invalid_auth":      true,
	"not_authed":        true,
	"account_inactive":  true,
	"token_revoked":     true,
	"invalid_blocks":    true,
}

func isWebhookRoute(route string) bool {
	return strings.HasPrefix(route, "https://") || strings.HasPrefix(route, "http://")
}

func (*Notifier) Close() error { // nolint: unparam
	return nil
}

func NewNotifier(apiURL string, renderer *FreshnessRenderer, logger log.Logger, opts ...NotifierOption) *Notifier {
	n := &Notifier{
		apiURL:         apiURL,
		renderer:       renderer,
		httpClient:     &http.Client{Timeout: httpTimeout},
		logger:         logger,
		retryMax:       DefaultRetryMax,
		retryBackoffMs: DefaultRetryBackoffMs,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}
