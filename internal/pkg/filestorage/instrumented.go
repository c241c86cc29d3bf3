package filestorage

import (
	"context"

	"github.com/yigit/edutech/internal/pkg/metrics"
)

// instrumented counts failed uploads of the wrapped store
type instrumented struct {
	next    FileStorage
	metrics *metrics.Metrics
}

// WithMetrics wraps a store so every failed upload is counted as a storage
// relay failure.
func WithMetrics(next FileStorage, m *metrics.Metrics) FileStorage {
	if m == nil {
		return next
	}
	return &instrumented{next: next, metrics: m}
}

func (s *instrumented) Upload(ctx context.Context, file File) (string, error) {
	url, err := s.next.Upload(ctx, file)
	if err != nil {
		s.metrics.RecordRelayFailure(metrics.RelayStorage)
	}
	return url, err
}
