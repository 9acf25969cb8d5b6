package evchan

import (
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type config struct {
	name    string
	logger  logrus.FieldLogger
	metrics *Metrics
}

// Option configures a [Channel] or [EventChannel].
type Option func(*config)

func defaultConfig() config {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return config{
		name:   "chan-" + uuid.NewString()[:8],
		logger: l,
	}
}

func newConfig(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithName sets the name used in log entries and metric labels.
// It panics if name is empty.
func WithName(name string) Option {
	return func(c *config) {
		if name == "" {
			panic("evchan: WithName requires a non-empty name")
		}
		c.name = name
	}
}

// WithLogger sets the logger. Every entry carries a "channel" field with
// the channel name. By default nothing is logged.
// It panics if l is nil.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *config) {
		if l == nil {
			panic("evchan: WithLogger requires non-nil logger")
		}
		c.logger = l
	}
}

// WithMetrics records channel activity into m. One [Metrics] may be shared
// by many channels; series are labelled by channel name.
func WithMetrics(m *Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}
