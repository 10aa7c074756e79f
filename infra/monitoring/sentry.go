package monitoring

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/kilianp07/liftbank/config"
	coremon "github.com/kilianp07/liftbank/core/monitoring"
)

// transport overrides the Sentry HTTP transport; nil keeps the default.
var transport sentry.Transport

// NewSentryMonitor initializes Sentry using the provided configuration and
// returns a Monitor implementation. An empty DSN yields a NopMonitor.
func NewSentryMonitor(cfg config.SentryConfig) (coremon.Monitor, error) {
	if cfg.DSN == "" {
		return coremon.NopMonitor{}, nil
	}
	hub, err := newHub(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		TracesSampleRate: cfg.TracesSampleRate,
		Release:          cfg.Release,
		Transport:        transport,
	})
	if err != nil {
		return nil, err
	}
	return &SentryMonitor{hub: hub}, nil
}

func newHub(opts sentry.ClientOptions) (*sentry.Hub, error) {
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, err
	}
	return sentry.NewHub(client, sentry.NewScope()), nil
}

// SentryMonitor reports to a dedicated Sentry hub.
type SentryMonitor struct {
	hub *sentry.Hub
}

func (s *SentryMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	if len(tags) == 0 {
		s.hub.CaptureException(err)
		return
	}
	s.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		s.hub.CaptureException(err)
	})
}

func (s *SentryMonitor) CapturePanic(v any) { s.hub.Recover(v) }

func (s *SentryMonitor) Flush(timeout time.Duration) { s.hub.Flush(timeout) }
