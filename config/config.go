package config

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goto/salt/config"
)

const envPrefix = "SENTINEL"

var (
	// overridden at build time
	BuildVersion = "dev"
	BuildCommit  = ""
	BuildDate    = ""
)

type Version string

func (v Version) String() string {
	return string(v)
}

type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
	LogLevelFatal LogLevel = "FATAL"
)

func (l LogLevel) String() string {
	return string(l)
}

type LogConfig struct {
	Level  LogLevel `default:"INFO" mapstructure:"level"`
	Format string   `default:"text" mapstructure:"format"` // text or json
}

// LoadServerConfig reads the server config from the given file, or ./sentinel.yaml when
// no file is given. Values can be overridden with SENTINEL_ prefixed environment
// variables, e.g. SENTINEL_SERVE_DB_DSN.
func LoadServerConfig(filePath string) (*ServerConfig, error) {
	opts := []config.LoaderOption{
		config.WithEnvPrefix(envPrefix),
		config.WithEnvKeyReplacer(".", "_"),
	}
	if filePath != "" {
		opts = append(opts, config.WithFile(filePath))
	} else {
		opts = append(opts, config.WithName("sentinel"), config.WithType("yaml"), config.WithPath("."))
	}

	conf := &ServerConfig{}
	if err := config.NewLoader(opts...).Load(conf); err != nil {
		return nil, fmt.Errorf("unable to load server config: %w", err)
	}

	conf.Version = Version(BuildVersion)
	conf.Log.Level = LogLevel(strings.ToUpper(conf.Log.Level.String()))
	if err := conf.validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (c *ServerConfig) validate() error {
	hasDestination := c.Slack.Channel != "" || c.Slack.WebhookURL != "" || c.Lark.ChatID != "" || c.Webhook.URL != ""
	larkCredentials := validation.When(c.Lark.ChatID != "",
		validation.Required.Error("lark.app_id and lark.app_secret are required when lark.chat_id is set"))

	// reported in order, the first failing rule wins
	checks := []error{
		validation.Validate(c.Serve.DB.DSN, validation.Required.Error("serve.db.dsn is required")),
		validation.Validate(c.Slack.Token, validation.When(c.Slack.Channel != "",
			validation.Required.Error("slack.token is required when slack.channel is set"))),
		validation.Validate(c.Lark.AppID, larkCredentials),
		validation.Validate(c.Lark.AppSecret, larkCredentials),
		validation.Validate(hasDestination, validation.Required.Error(
			"at least one of slack.channel, slack.webhook_url, lark.chat_id or webhook.url is required")),
		validation.Validate(c.Alerting.Concurrency, validation.Min(0).Error("alerting.concurrency must not be negative")),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	return nil
}
