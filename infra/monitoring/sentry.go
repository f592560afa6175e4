package monitoring

import (
	"context"
	"errors"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/kilianp07/cevcharge/config"
	"github.com/kilianp07/cevcharge/core/charging"
	coremon "github.com/kilianp07/cevcharge/core/monitoring"
	coremqtt "github.com/kilianp07/cevcharge/core/mqtt"
)

// NewSentryMonitor initializes Sentry using the provided configuration and
// returns a Monitor implementation. Without a DSN it returns a NopMonitor.
func NewSentryMonitor(cfg config.SentryConfig) (coremon.Monitor, error) {
	if cfg.DSN == "" {
		return coremon.NopMonitor{}, nil
	}
	return newSentryMonitor(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		TracesSampleRate: cfg.TracesSampleRate,
		Release:          cfg.Release,
	})
}

func newSentryMonitor(opts sentry.ClientOptions) (coremon.Monitor, error) {
	if err := sentry.Init(opts); err != nil {
		return nil, err
	}
	return &sentryMonitor{}, nil
}

type sentryMonitor struct{}

// CaptureException reports err grouped by its failure kind. Rejected input
// is reported as a warning; cancelled runs are not reported.
func (s *sentryMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	kind := ErrorKind(err)
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		scope.SetTag("error_kind", kind)
		scope.SetFingerprint([]string{"{{ default }}", kind})
		if kind == KindConfiguration || kind == KindDataAlignment || kind == KindEmptyInput {
			scope.SetLevel(sentry.LevelWarning)
		} else {
			scope.SetLevel(sentry.LevelError)
		}
		if id := tags["run_id"]; id != "" {
			scope.SetContext("run", sentry.Context{"id": id, "scenario": tags["scenario"]})
		}
		sentry.CaptureException(err)
	})
}

func (s *sentryMonitor) Recover() {
	if r := recover(); r != nil {
		sentry.CurrentHub().Recover(r)
		sentry.Flush(2 * time.Second)
		panic(r)
	}
}

func (s *sentryMonitor) Flush(timeout time.Duration) { sentry.Flush(timeout) }

// Failure kinds attached to reported errors.
const (
	KindConfiguration = "configuration"
	KindDataAlignment = "data_alignment"
	KindEmptyInput    = "empty_input"
	KindMQTT          = "mqtt_not_connected"
	KindUnexpected    = "unexpected"
)

// ErrorKind maps an error to the failure kind used to group Sentry issues.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, charging.ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, charging.ErrDataAlignment):
		return KindDataAlignment
	case errors.Is(err, charging.ErrEmptyInput):
		return KindEmptyInput
	case errors.Is(err, coremqtt.ErrNotConnected):
		return KindMQTT
	default:
		return KindUnexpected
	}
}
