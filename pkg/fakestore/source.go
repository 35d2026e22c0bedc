package fakestore

import (
	"context"
	"time"

	dashboard "github.com/goliatone/go-insights/components/dashboard"
)

// NewTimeoutSource bounds every fetch made through source by timeout.
func NewTimeoutSource(source dashboard.UserSource, timeout time.Duration) dashboard.UserSource {
	if timeout <= 0 {
		return source
	}
	return &timeoutSource{source: source, timeout: timeout}
}

type timeoutSource struct {
	source  dashboard.UserSource
	timeout time.Duration
}

func (s *timeoutSource) FetchUsers(ctx context.Context) ([]dashboard.SourceUser, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.source.FetchUsers(ctx)
}
