package webhook // nolint: testpackage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goto/salt/log"
	"github.com/stretchr/testify/assert"

	"github.com/goto/sentinel/core/alert"
	"github.com/goto/sentinel/internal/lib/timezone"
)

func TestWebhook(t *testing.T) {
	ctx := context.Background()
	logger := log.NewNoop()
	maxLoadedAt := "2023-11-10 04:00:00"
	timeAgo := 22500.0
	freshnessAlert, err := alert.NewFreshnessAlert(alert.FreshnessRecord{
		AlertID:               "alert-1",
		UniqueID:              "source.shop.raw.orders",
		Status:                "warn",
		DetectedAt:            time.Date(2023, 11, 10, 10, 20, 50, 0, time.UTC),
		Owners:                []string{"@data-eng"},
		MaxLoadedAt:           &maxLoadedAt,
		MaxLoadedAtTimeAgoInS: &timeAgo,
		SourceName:            "raw",
		Identifier:            "orders",
	}, "UTC", timezone.NewConverter())
	assert.NoError(t, err)

	t.Run("should send webhook to user url successfully", func(t *testing.T) {
		var payload webhookPayload
		muxRouter := http.NewServeMux()
		server := httptest.NewServer(muxRouter)
		defer server.Close()
		muxRouter.HandleFunc("/users/webhook_end_point", func(rw http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			_ = json.NewDecoder(r.Body).Decode(&payload)
			rw.WriteHeader(http.StatusOK)
		})

		client := NewNotifier(logger, WithRetry(1, 0))
		defer client.Close()

		err := client.Notify(ctx, alert.NotifyAttrs{
			Route: server.URL + "/users/webhook_end_point",
			Alert: freshnessAlert,
		})

		assert.Nil(t, err)
		assert.Equal(t, "alert-1", payload.AlertID)
		assert.Equal(t, "source.shop.raw.orders", payload.UniqueID)
		assert.Equal(t, "raw.orders", payload.Source)
		assert.Equal(t, "warn", payload.Status)
		assert.Equal(t, "2023-11-10T10:20:50Z", payload.DetectedAt)
		assert.Equal(t, "2023-11-10T04:00:00+00:00", *payload.MaxLoadedAt)
		assert.Nil(t, payload.SnapshottedAt)
		assert.Equal(t, 22500.0, *payload.TimeAgoInS)
		assert.Empty(t, payload.Error)
		assert.Equal(t, []string{"@data-eng"}, payload.Owners)
	})
	t.Run("should retry server errors and return the last one", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			rw.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewNotifier(logger, WithRetry(3, 0))

		err := client.Notify(ctx, alert.NotifyAttrs{Route: server.URL, Alert: freshnessAlert})

		assert.EqualError(t, err, "webhook notifier: source.shop.raw.orders: non 2xx status code received status: 502 Bad Gateway")
		assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
	})
	t.Run("should succeed when a retry is accepted", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				rw.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			rw.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		client := NewNotifier(logger, WithRetry(3, 0))

		err := client.Notify(ctx, alert.NotifyAttrs{Route: server.URL, Alert: freshnessAlert})

		assert.NoError(t, err)
		assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
	})
	t.Run("should not retry client errors", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			rw.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewNotifier(logger, WithRetry(3, 0))

		err := client.Notify(ctx, alert.NotifyAttrs{Route: server.URL, Alert: freshnessAlert})

		assert.EqualError(t, err, "webhook notifier: source.shop.raw.orders: non 2xx status code received status: 404 Not Found")
		assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	})
	t.Run("should carry the failure message for runtime errors", func(t *testing.T) {
		failed, err := alert.NewFreshnessAlert(alert.FreshnessRecord{
			UniqueID:   "source.shop.raw.orders",
			Status:     "runtime error",
			SourceName: "raw",
			Identifier: "orders",
			Error:      "connection timeout",
		}, "UTC", timezone.NewConverter())
		assert.NoError(t, err)

		payload := payloadFrom(failed)

		assert.Equal(t, "connection timeout", payload.Error)
		assert.Nil(t, payload.TimeAgoInS)
		assert.Nil(t, payload.MaxLoadedAt)
	})
	t.Run("should reject nil alerts and empty routes", func(t *testing.T) {
		client := NewNotifier(logger)

		err := client.Notify(ctx, alert.NotifyAttrs{Route: "http://localhost"})
		assert.EqualError(t, err, "invalid argument for entity webhook: alert is nil")

		err = client.Notify(ctx, alert.NotifyAttrs{Alert: freshnessAlert})
		assert.EqualError(t, err, "invalid argument for entity webhook: route is empty for source.shop.raw.orders")
	})
}
