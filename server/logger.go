package server

import (
	"github.com/goto/salt/log"
	"github.com/sirupsen/logrus"
)

const logFormatJSON = "json"

func NewLogger(logLevel, logFormat string) log.Logger {
	opts := []log.Option{log.LogrusWithLevel(logLevel)}
	if logFormat == logFormatJSON {
		opts = append(opts, log.LogrusWithFormatter(&logrus.JSONFormatter{}))
	}
	return log.NewLogrus(opts...)
}
