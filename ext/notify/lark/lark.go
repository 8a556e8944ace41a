package lark

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/goto/salt/log"
	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goto/sentinel/core/alert"
	"github.com/goto/sentinel/internal/errors"
)

const (
	EntityLark = "lark"

	requestTimeout = time.Second * 10
)

var (
	notifierType     = "lark"
	larkQueueCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name:        alert.MetricNotificationQueue,
		ConstLabels: map[string]string{"type": notifierType},
	})
	larkWorkerSendErrCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name:        alert.MetricNotificationWorkerSendErr,
		ConstLabels: map[string]string{"type": notifierType},
	})
	larkWorkerSendCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name:        alert.MetricNotificationSend,
		ConstLabels: map[string]string{"type": notifierType},
	})
)

// Notifier posts freshness alerts as interactive cards to group chats. The
// route is the chat id of a group the app is a member of.
type Notifier struct {
	client   *lark.Client
	renderer *CardRenderer
	logger   log.Logger
}

func (s *Notifier) Notify(ctx context.Context, attr alert.NotifyAttrs) error {
	if attr.Alert == nil {
		return errors.InvalidArgument(EntityLark, "alert is nil")
	}
	if attr.Route == "" {
		return errors.InvalidArgument(EntityLark, "chat id is empty for "+attr.Alert.UniqueID())
	}

	content, err := s.renderer.Render(attr.Alert)
	if err != nil {
		return err
	}
	larkQueueCounter.Inc()

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(`chat_id`).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(attr.Route).
			MsgType(`interactive`).
			Content(content).
			Uuid(uuid.NewString()).
			Build()).
		Build()

	resp, err := s.client.Im.Message.Create(ctx, req)
	if err != nil {
		larkWorkerSendErrCounter.Inc()
		return fmt.Errorf("lark notifier: %s: %w", attr.Alert.UniqueID(), err)
	}
	if !resp.Success() {
		larkWorkerSendErrCounter.Inc()
		return fmt.Errorf("lark notifier: %s: code %d: %s", attr.Alert.UniqueID(), resp.Code, resp.Msg)
	}

	larkWorkerSendCounter.Inc()
	s.logger.Debug("lark notifier: alert sent", "unique_id", attr.Alert.UniqueID(), "chat_id", attr.Route)
	return nil
}

func (*Notifier) Close() error { // nolint: unparam
	return nil
}

// NewNotifier creates a notifier for a self built app, baseURL overrides the open platform domain when set.
func NewNotifier(appID, appSecret, baseURL string, renderer *CardRenderer, logger log.Logger) *Notifier {
	opts := []lark.ClientOptionFunc{lark.WithReqTimeout(requestTimeout)}
	if baseURL != "" {
		opts = append(opts, lark.WithOpenBaseUrl(baseURL))
	}

	return &Notifier{
		client:   lark.NewClient(appID, appSecret, opts...),
		renderer: renderer,
		logger:   logger,
	}
}
