package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/goto/sentinel/config"
)

func TestLoadServerConfig(t *testing.T) {
	writeConfig := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "sentinel.yaml")
		assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	t.Run("loads values from file and applies defaults", func(t *testing.T) {
		path := writeConfig(t, `
log:
  level: debug
serve:
  db:
    dsn: postgres://localhost:5432/sentinel?sslmode=disable
alerting:
  timezone: Asia/Jakarta
slack:
  token: xoxb-token
  channel: "#data-alerts"
`)
		conf, err := config.LoadServerConfig(path)
		assert.NoError(t, err)
		assert.Equal(t, config.LogLevelDebug, conf.Log.Level)
		assert.Equal(t, "postgres://localhost:5432/sentinel?sslmode=disable", conf.Serve.DB.DSN)
		assert.Equal(t, "Asia/Jakarta", conf.Alerting.Timezone)
		assert.Equal(t, "@every 1m", conf.Alerting.Schedule)
		assert.Equal(t, "2006-01-02 15:04:05", conf.Alerting.DatetimeFormat)
		assert.Equal(t, "#data-alerts", conf.Slack.Channel)
		assert.Equal(t, config.Version(config.BuildVersion), conf.Version)
	})
	t.Run("returns error when file does not exist", func(t *testing.T) {
		_, err := config.LoadServerConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorContains(t, err, "unable to load server config")
	})
	t.Run("returns error when dsn is missing", func(t *testing.T) {
		path := writeConfig(t, `
slack:
  webhook_url: https://hooks.slack.com/services/T/B/X
`)
		_, err := config.LoadServerConfig(path)
		assert.EqualError(t, err, "serve.db.dsn is required")
	})
	t.Run("returns error when slack channel has no token", func(t *testing.T) {
		path := writeConfig(t, `
serve:
  db:
    dsn: postgres://localhost:5432/sentinel
slack:
  channel: "#data-alerts"
`)
		_, err := config.LoadServerConfig(path)
		assert.EqualError(t, err, "slack.token is required when slack.channel is set")
	})
	t.Run("returns error when no destination is configured", func(t *testing.T) {
		path := writeConfig(t, `
serve:
  db:
    dsn: postgres://localhost:5432/sentinel
`)
		_, err := config.LoadServerConfig(path)
		assert.ErrorContains(t, err, "at least one of")
	})
}

func TestLoadServerConfigLark(t *testing.T) {
	t.Run("returns error when lark chat has no app credentials", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sentinel.yaml")
		assert.NoError(t, os.WriteFile(path, []byte(`
serve:
  db:
    dsn: postgres://localhost:5432/sentinel
lark:
  chat_id: oc_123
`), 0o600))

		_, err := config.LoadServerConfig(path)
		assert.EqualError(t, err, "lark.app_id and lark.app_secret are required when lark.chat_id is set")
	})
}
