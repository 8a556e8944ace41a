package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/goto/salt/log"
	"github.com/kushsharma/parallel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goto/sentinel/core/alert"
	"github.com/goto/sentinel/core/event"
	"github.com/goto/sentinel/core/event/moderator"
	"github.com/goto/sentinel/internal/errors"
)

const (
	DefaultConcurrency = 5
	DefaultBatchSize   = 100
	DefaultLookback    = 24 * time.Hour

	metricStatusSent   = "sent"
	metricStatusFailed = "failed"
)

var freshnessDeliveryMetric = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "freshness_alert_deliveries_total",
}, []string{"channel", "status"})

type FreshnessRepository interface {
	GetPending(ctx context.Context, detectedAfter time.Time, limit int) ([]alert.FreshnessRecord, error)
	UpdateSendStatus(ctx context.Context, alertID string, status alert.SendStatus) error
}

type DeliveryRepository interface {
	Insert(ctx context.Context, delivery alert.Delivery) (uuid.UUID, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status alert.SendStatus, message string) error
}

type Notifier interface {
	io.Closer
	Notify(ctx context.Context, attr alert.NotifyAttrs) error
}

type EventHandler interface {
	HandleEvent(moderator.Event)
}

// Channel is a destination every pending alert is delivered to.
type Channel struct {
	Name     string
	Route    string
	Secret   string
	Notifier Notifier
}

type Options struct {
	Timezone    string
	IsWorkflow  bool
	Lookback    time.Duration
	Concurrency int
	BatchSize   int
}

type FreshnessService struct {
	alertRepo    FreshnessRepository
	deliveryRepo DeliveryRepository
	converter    alert.TimeConverter
	channels     []Channel
	eventHandler EventHandler
	opts         Options
	l            log.Logger

	now func() time.Time
}

// SendPending delivers every pending alert inside the lookback window to all channels
// and marks it sent only when every channel accepted it.
func (s *FreshnessService) SendPending(ctx context.Context) error {
	detectedAfter := s.now().Add(-s.opts.Lookback)
	records, err := s.alertRepo.GetPending(ctx, detectedAfter, s.opts.BatchSize)
	if err != nil {
		s.l.Error("error getting pending freshness alerts", "error", err)
		return err
	}
	if len(records) == 0 {
		return nil
	}

	multiError := errors.NewMultiError("errors in send pending alerts")
	runner := parallel.NewRunner(parallel.WithTicket(s.opts.Concurrency), parallel.WithLimit(s.opts.Concurrency))
	for _, record := range records {
		runner.Add(func(currentRecord alert.FreshnessRecord) func() (interface{}, error) {
			return func() (interface{}, error) {
				return nil, s.send(ctx, currentRecord)
			}
		}(record))
	}

	countSent := 0
	for _, result := range runner.Run() {
		if result.Err != nil {
			multiError.Append(result.Err)
			continue
		}
		countSent++
	}
	s.l.Info("pending freshness alerts processed", "total", len(records), "sent", countSent)

	return multiError.ToErr()
}

func (s *FreshnessService) send(ctx context.Context, record alert.FreshnessRecord) error {
	freshnessAlert, err := alert.NewFreshnessAlert(record, s.opts.Timezone, s.converter)
	if err != nil {
		s.l.Warn("unable to build freshness alert", "alert_id", record.AlertID, "error", err)
		return s.markAlert(ctx, record.AlertID, alert.SendStatusFailed, err)
	}

	multiError := errors.NewMultiError("errors in deliver alert " + record.AlertID)
	for _, channel := range s.channels {
		multiError.Append(s.deliver(ctx, freshnessAlert, channel))
	}
	if err := multiError.ToErr(); err != nil {
		return s.markAlert(ctx, record.AlertID, alert.SendStatusFailed, err)
	}
	return s.markAlert(ctx, record.AlertID, alert.SendStatusSent, nil)
}

func (s *FreshnessService) deliver(ctx context.Context, freshnessAlert *alert.FreshnessAlert, channel Channel) error {
	delivery := alert.Delivery{
		AlertID:  freshnessAlert.ID,
		UniqueID: freshnessAlert.UniqueID(),
		Channel:  channel.Name,
		Route:    channel.Route,
		Status:   alert.SendStatusPending,
	}

	logID, logErr := s.deliveryRepo.Insert(ctx, delivery)
	if logErr != nil {
		s.l.Warn("unable to log delivery", "alert_id", delivery.AlertID, "error", logErr)
	}

	notifyErr := channel.Notifier.Notify(ctx, alert.NotifyAttrs{
		Route:      channel.Route,
		Secret:     channel.Secret,
		Alert:      freshnessAlert,
		IsWorkflow: s.opts.IsWorkflow,
	})

	delivery.SentAt = s.now()
	delivery.Status = alert.SendStatusSent
	if notifyErr != nil {
		delivery.Status = alert.SendStatusFailed
		delivery.Message = notifyErr.Error()
		freshnessDeliveryMetric.WithLabelValues(channel.Name, metricStatusFailed).Inc()
	} else {
		freshnessDeliveryMetric.WithLabelValues(channel.Name, metricStatusSent).Inc()
	}

	if logErr == nil {
		if err := s.deliveryRepo.UpdateStatus(ctx, logID, delivery.Status, delivery.Message); err != nil {
			s.l.Warn("unable to update delivery log", "id", logID.String(), "error", err)
		}
	}
	s.eventHandler.HandleEvent(event.NewAlertDelivered(delivery))

	if notifyErr != nil {
		return fmt.Errorf("%s: %s: %w", channel.Name, channel.Route, notifyErr)
	}
	return nil
}

func (s *FreshnessService) markAlert(ctx context.Context, alertID string, status alert.SendStatus, cause error) error {
	if err := s.alertRepo.UpdateSendStatus(ctx, alertID, status); err != nil {
		s.l.Error("unable to update send status", "alert_id", alertID, "status", status.String(), "error", err)
		if cause == nil {
			return err
		}
	}
	return cause
}

// Close closes every channel notifier.
func (s *FreshnessService) Close() error {
	multiError := errors.NewMultiError("errors in closing notifiers")
	for _, channel := range s.channels {
		multiError.Append(channel.Notifier.Close())
	}
	return multiError.ToErr()
}

func NewFreshnessService(logger log.Logger, alertRepo FreshnessRepository, deliveryRepo DeliveryRepository,
	converter alert.TimeConverter, channels []Channel, eventHandler EventHandler, opts Options,
) *FreshnessService {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Lookback <= 0 {
		opts.Lookback = DefaultLookback
	}
	if eventHandler == nil {
		eventHandler = moderator.NoOpHandler{}
	}

	return &FreshnessService{
		alertRepo:    alertRepo,
		deliveryRepo: deliveryRepo,
		converter:    converter,
		channels:     channels,
		eventHandler: eventHandler,
		opts:         opts,
		l:            logger,
		now:          time.Now,
	}
}
