package metrics

import "time"

// Ensure NoopMetrics implements Recorder interface at compile time
var _ Recorder = (*NoopMetrics)(nil)

// NoopMetrics is a no-op implementation of the Recorder interface.
type NoopMetrics struct{}

// NewNoopMetrics creates a new NoopMetrics instance
func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (n *NoopMetrics) RecordGrantIssued(grantType string, duration time.Duration) {}

func (n *NoopMetrics) RecordGrantRejected(grantType, reason string) {}

func (n *NoopMetrics) RecordAuthCodeIssued() {}

func (n *NoopMetrics) RecordSessionCreated(kind string) {}

func (n *NoopMetrics) RecordLogin(success bool) {}
