package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goto/salt/log"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mitchellh/mapstructure"

	"github.com/goto/sentinel/config"
	"github.com/goto/sentinel/core/alert/service"
	"github.com/goto/sentinel/core/event/moderator"
	"github.com/goto/sentinel/ext/notify/lark"
	"github.com/goto/sentinel/ext/notify/slack"
	"github.com/goto/sentinel/ext/notify/webhook"
	"github.com/goto/sentinel/ext/transport/kafka"
	"github.com/goto/sentinel/internal/lib/timezone"
	"github.com/goto/sentinel/internal/store/postgres"
	"github.com/goto/sentinel/internal/store/postgres/alerts"
	"github.com/goto/sentinel/internal/telemetry"
)

const (
	shutdownWait = 30 * time.Second

	channelSlack   = "slack"
	channelLark    = "lark"
	channelWebhook = "webhook"
)

type setupFn func() error

type SentinelServer struct {
	conf   *config.ServerConfig
	logger log.Logger

	dbPool     *pgxpool.Pool
	httpAddr   string
	httpServer *http.Server

	channels       []service.Channel
	eventHandler   moderator.Handler
	alertService   *service.FreshnessService
	dispatchWorker *service.DispatchWorker

	cleanupFn []func()
}

func New(conf *config.ServerConfig) (*SentinelServer, error) {
	server := &SentinelServer{
		conf:     conf,
		httpAddr: fmt.Sprintf(":%d", conf.Serve.Port),
		logger:   NewLogger(conf.Log.Level.String(), conf.Log.Format),
	}

	setupFns := []setupFn{
		server.setupPublisher,
		server.setupTelemetry,
		server.setupDB,
		server.setupNotifiers,
		server.setupDispatch,
		server.setupHTTP,
	}

	for _, fn := range setupFns {
		if err := fn(); err != nil {
			return server, err
		}
	}

	server.logger.Info("Starting Sentinel", "version", config.BuildVersion)
	server.startListening()

	return server, nil
}

func (s *SentinelServer) setupPublisher() error {
	if s.conf.Publisher == nil {
		s.eventHandler = moderator.NoOpHandler{}
		return nil
	}

	ch := make(chan []byte, s.conf.Publisher.Buffer)

	var worker *moderator.Worker

	switch s.conf.Publisher.Type {
	case "kafka":
		var kafkaConfig config.PublisherKafkaConfig
		if err := mapstructure.Decode(s.conf.Publisher.Config, &kafkaConfig); err != nil {
			return err
		}

		writer := kafka.NewWriter(kafkaConfig.BrokerURLs, kafkaConfig.Topic, s.logger)
		interval := time.Second * time.Duration(kafkaConfig.BatchIntervalSecond)
		worker = moderator.NewWorker(ch, writer, interval, s.logger)
	default:
		return fmt.Errorf("publisher with type [%s] is not recognized", s.conf.Publisher.Type)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go worker.Run(ctx)

	s.cleanupFn = append(s.cleanupFn, func() {
		cancel()

		if err := worker.Close(); err != nil {
			s.logger.Error("error closing publishing worker", "error", err)
		}
	})

	s.eventHandler = moderator.NewEventHandler(ch, s.logger)
	return nil
}

func (s *SentinelServer) setupTelemetry() error {
	telemetry.MetricServer = s.conf.Telemetry.MetricServerAddr
	return nil
}

func (s *SentinelServer) setupDB() error {
	err := postgres.Migrate(s.conf.Serve.DB.DSN)
	if err != nil {
		return fmt.Errorf("error initializing migration: %w", err)
	}

	s.dbPool, err = postgres.Open(s.conf.Serve.DB)
	if err != nil {
		return fmt.Errorf("postgres.Open: %w", err)
	}

	return nil
}

func (s *SentinelServer) setupNotifiers() error {
	slackConf := s.conf.Slack
	if slackConf.Channel != "" || slackConf.WebhookURL != "" {
		renderer := slack.NewFreshnessRenderer(s.conf.Alerting.DatetimeFormat)
		notifier := slack.NewNotifier(slackConf.APIURL, renderer, s.logger,
			slack.WithRetry(slackConf.RetryMax, slackConf.RetryDelay))

		if slackConf.Channel != "" {
			s.channels = append(s.channels, service.Channel{
				Name: channelSlack, Route: slackConf.Channel, Secret: slackConf.Token, Notifier: notifier,
			})
		}
		if slackConf.WebhookURL != "" {
			s.channels = append(s.channels, service.Channel{
				Name: channelSlack, Route: slackConf.WebhookURL, Notifier: notifier,
			})
		}
	}

	if larkConf := s.conf.Lark; larkConf.ChatID != "" {
		renderer := lark.NewCardRenderer(s.conf.Alerting.DatetimeFormat)
		s.channels = append(s.channels, service.Channel{
			Name:     channelLark,
			Route:    larkConf.ChatID,
			Notifier: lark.NewNotifier(larkConf.AppID, larkConf.AppSecret, larkConf.BaseURL, renderer, s.logger),
		})
	}

	if webhookConf := s.conf.Webhook; webhookConf.URL != "" {
		s.channels = append(s.channels, service.Channel{
			Name:     channelWebhook,
			Route:    webhookConf.URL,
			Notifier: webhook.NewNotifier(s.logger, webhook.WithRetry(webhookConf.RetryMax, webhookConf.RetryDelay)),
		})
	}

	if len(s.channels) == 0 {
		return errors.New("no notification channel configured")
	}
	return nil
}

func (s *SentinelServer) setupDispatch() error {
	alerting := s.conf.Alerting
	s.alertService = service.NewFreshnessService(s.logger,
		alerts.NewFreshnessRepository(s.dbPool),
		alerts.NewDeliveryRepository(s.dbPool),
		timezone.NewConverter(),
		s.channels,
		s.eventHandler,
		service.Options{
			Timezone:    alerting.Timezone,
			IsWorkflow:  s.conf.Slack.Workflow,
			Lookback:    time.Hour * time.Duration(alerting.LookbackHours),
			Concurrency: alerting.Concurrency,
			BatchSize:   alerting.BatchSize,
		},
	)

	s.dispatchWorker = service.NewDispatchWorker(s.logger, s.alertService, alerting.Schedule)
	return s.dispatchWorker.Start(context.Background())
}

func (s *SentinelServer) setupHTTP() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.Handler())
	mux.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	s.httpServer = &http.Server{
		Addr:              s.httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

func (s *SentinelServer) startListening() {
	go func() {
		s.logger.Info("Listening at", "address", s.httpAddr)
		if err := s.httpServer.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				s.logger.Fatal("server error", "error", err)
			}
		}
	}()
}

func (s *SentinelServer) Shutdown() {
	s.logger.Warn("Shutting down server")
	if s.httpServer != nil {
		// Create a deadline to wait for server
		ctx, cancel := context.WithTimeout(context.Background(), shutdownWait)
		defer cancel()

		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("Error in http shutdown", "error", err)
		}
	}

	if s.dispatchWorker != nil {
		s.dispatchWorker.Stop()
	}

	// stops the event publisher before notifiers are closed
	for _, fn := range s.cleanupFn {
		fn()
	}

	if s.alertService != nil {
		if err := s.alertService.Close(); err != nil {
			s.logger.Error("Error closing notifiers", "error", err)
		}
	}

	if s.dbPool != nil {
		s.dbPool.Close()
	}

	s.logger.Info("Server shutdown complete")
}
