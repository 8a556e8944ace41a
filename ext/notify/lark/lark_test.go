package lark

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goto/salt/log"
	"github.com/stretchr/testify/assert"

	"github.com/goto/sentinel/core/alert"
)

func newLarkServer(t *testing.T, messageResponse string, received *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/open-apis/auth/v3/tenant_access_token/internal":
			_, _ = w.Write([]byte(`{"code":0,"msg":"ok","tenant_access_token":"t-test","expire":7200}`))
		case "/open-apis/im/v1/messages":
			assert.Equal(t, "chat_id", r.URL.Query().Get("receive_id_type"))
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, received)
			_, _ = w.Write([]byte(messageResponse))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestNotifier(t *testing.T) {
	ctx := context.Background()
	logger := log.NewNoop()
	renderer := NewCardRenderer("")

	t.Run("posts the card to the chat", func(t *testing.T) {
		var received map[string]any
		server := newLarkServer(t, `{"code":0,"msg":"success","data":{"message_id":"om_1"}}`, &received)
		defer server.Close()

		notifier := NewNotifier("cli_sent", "secret", server.URL, renderer, logger)
		err := notifier.Notify(ctx, alert.NotifyAttrs{Route: "oc_123", Alert: newFreshnessAlert(t, nil)})

		assert.NoError(t, err)
		assert.Equal(t, "oc_123", received["receive_id"])
		assert.Equal(t, "interactive", received["msg_type"])
		assert.Contains(t, received["content"], "dbt source freshness alert")
	})
	t.Run("returns error when the chat rejects the message", func(t *testing.T) {
		var received map[string]any
		server := newLarkServer(t, `{"code":230002,"msg":"bot is not in the chat"}`, &received)
		defer server.Close()

		notifier := NewNotifier("cli_rejected", "secret", server.URL, renderer, logger)
		err := notifier.Notify(ctx, alert.NotifyAttrs{Route: "oc_404", Alert: newFreshnessAlert(t, nil)})

		assert.EqualError(t, err, "lark notifier: source.shop.raw.orders: code 230002: bot is not in the chat")
	})
	t.Run("returns error without chat id", func(t *testing.T) {
		notifier := NewNotifier("cli_empty", "secret", "", renderer, logger)
		err := notifier.Notify(ctx, alert.NotifyAttrs{Alert: newFreshnessAlert(t, nil)})
		assert.ErrorContains(t, err, "chat id is empty")
	})
	t.Run("returns error without alert", func(t *testing.T) {
		notifier := NewNotifier("cli_nil", "secret", "", renderer, logger)
		assert.ErrorContains(t, notifier.Notify(ctx, alert.NotifyAttrs{Route: "oc_1"}), "alert is nil")
	})
}
