// Package analytics reports anonymous usage of the console tools to Segment.
// Nothing is sent unless a write key is configured.
package analytics

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	segment "github.com/segmentio/analytics-go/v3"
	"go.uber.org/zap"
)

const eventToolCalled = "Tool Called"

// Tracker enqueues usage events. A nil or disabled Tracker is a no-op.
type Tracker struct {
	client      segment.Client
	logger      *zap.Logger
	anonymousID string
}

// New creates a tracker for writeKey. endpoint overrides the Segment API
// url when non empty.
func New(log *zap.Logger, writeKey, endpoint string) (*Tracker, error) {
	t := &Tracker{logger: log, anonymousID: uuid.NewString()}
	if writeKey == "" {
		return t, nil
	}
	cfg := segment.Config{
		Endpoint:  endpoint,
		Interval:  10 * time.Second,
		BatchSize: 100,
		Logger:    segmentLogger{log: log},
	}
	c, err := segment.NewWithConfig(writeKey, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create analytics client: %w", err)
	}
	t.client = c
	log.Info("Usage analytics enabled")
	return t, nil
}

// Enabled reports whether events are sent anywhere.
func (t *Tracker) Enabled() bool {
	return t != nil && t.client != nil
}

// ToolCalled records one tool invocation.
func (t *Tracker) ToolCalled(tool, tenant string, failed bool, d time.Duration) {
	if !t.Enabled() {
		return
	}
	err := t.client.Enqueue(segment.Track{
		AnonymousId: t.anonymousID,
		Event:       eventToolCalled,
		Properties: segment.NewProperties().
			Set("tool", tool).
			Set("tenant", tenant).
			Set("success", !failed).
			Set("durationMs", d.Milliseconds()),
	})
	if err != nil {
		t.logger.Debug("Failed to enqueue analytics event", zap.Error(err))
	}
}

// Close flushes pending events.
func (t *Tracker) Close() error {
	if !t.Enabled() {
		return nil
	}
	return t.client.Close()
}

type segmentLogger struct {
	log *zap.Logger
}

func (l segmentLogger) Logf(format string, args ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, args...))
}

func (l segmentLogger) Errorf(format string, args ...interface{}) {
	l.log.Warn(fmt.Sprintf(format, args...))
}
