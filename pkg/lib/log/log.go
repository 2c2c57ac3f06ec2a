// Package log provides the logging interface for the rsbx SDK.
//
// The SDK accepts any implementation of [Logger]. Use [Noop] to disable logging (the
// default) or [NewLogrus] to log through a logrus entry:
//
//	client, err := lib.New(ctx, lib.Config{
//	    Logger: log.NewLogrus(logrus.NewEntry(logrus.StandardLogger())),
//	})
package log

import (
	"github.com/sirupsen/logrus"

	"github.com/slok/rsbx/internal/log"
	loglogrus "github.com/slok/rsbx/internal/log/logrus"
)

// Logger is the interface that loggers must implement for the SDK.
//
// Components tag their logs with [Kv] values (e.g. `svc`, `sandbox-id`, `exec-id`).
type Logger = log.Logger

// Kv is a helper type for structured logging key-value pairs.
type Kv = log.Kv

// Noop is a logger that discards all log output.
var Noop = log.Noop

// NewLogrus returns a [Logger] backed by a logrus entry.
func NewLogrus(l *logrus.Entry) Logger {
	return loglogrus.NewLogrus(l)
}
