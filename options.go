// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package twsbus

import (
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// MaxReconnectAttempts caps how many consecutive reconnect attempts
// the dispatcher makes before giving up and entering shutdown.
const MaxReconnectAttempts = 5

// Options configures a Client's connection, reconnect, logging and
// metrics behavior.
type Options struct {
	ClientID int32

	Logger *logrus.Logger
	Meter  metric.Meter

	MaxReconnectAttempts int
	ReconnectBaseDelay   time.Duration
	ReconnectMaxDelay    time.Duration

	MinServerVersion int
	MaxServerVersion int
}

var defaultOptions = Options{
	ClientID:             0,
	Logger:               logrus.StandardLogger(),
	Meter:                noop.NewMeterProvider().Meter("twsbus"),
	MaxReconnectAttempts: MaxReconnectAttempts,
	ReconnectBaseDelay:   250 * time.Millisecond,
	ReconnectMaxDelay:    10 * time.Second,
	MinServerVersion:     100,
	MaxServerVersion:     MaxServerVersion,
}

// Option configures a Client at construction time.
type Option func(*Options)

// WithClientID sets the client id announced during StartApi. Client id
// 0 may adopt manually-placed TWS orders; any other value should be
// unique per connection.
func WithClientID(id int32) Option {
	return func(o *Options) { o.ClientID = id }
}

// WithLogger overrides the logrus logger used for bus, connection, and
// dispatcher diagnostics.
func WithLogger(l *logrus.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithMeter overrides the OpenTelemetry meter used for bus counters.
// The default is a no-op meter, so a consumer that never calls this
// pays no instrumentation cost.
func WithMeter(m metric.Meter) Option {
	return func(o *Options) { o.Meter = m }
}

// WithReconnectPolicy overrides the reconnect attempt cap and the
// exponential backoff bounds.
func WithReconnectPolicy(maxAttempts int, base, max time.Duration) Option {
	return func(o *Options) {
		o.MaxReconnectAttempts = maxAttempts
		o.ReconnectBaseDelay = base
		o.ReconnectMaxDelay = max
	}
}

// WithProtocolVersionRange overrides the [min, max] protocol version
// range announced in the greeting.
func WithProtocolVersionRange(min, max int) Option {
	return func(o *Options) {
		o.MinServerVersion = min
		o.MaxServerVersion = max
	}
}
