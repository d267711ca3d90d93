package partyhistory

import (
	"context"

	"go.uber.org/zap"
)

// LoadTimeline fetches up to n milestones. Failures are logged and produce an
// empty timeline rather than an error.
func LoadTimeline(ctx context.Context, provider ContentProvider, n int, logger *zap.Logger) []TimelineEvent {
	logger = orNop(logger)
	if n <= 0 {
		n = DefaultTimelineCount
	}

	events, err := provider.FetchTimeline(ctx, n)
	if err != nil {
		logger.Warn("Timeline unavailable", zap.String("provider", provider.Name()), zap.Error(err))
		return []TimelineEvent{}
	}

	if len(events) > n {
		events = events[:n]
	}
	return events
}
