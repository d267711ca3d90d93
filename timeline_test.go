package partyhistory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func sampleEvents(n int) []TimelineEvent {
	events := make([]TimelineEvent, n)
	for i := range events {
		events[i] = TimelineEvent{Year: "1921", Title: "中共一大", Description: "在上海召开", Significance: "党的成立"}
	}
	return events
}

func TestLoadTimeline(t *testing.T) {
	provider := &fakeProvider{events: sampleEvents(8)}
	events := LoadTimeline(context.Background(), provider, 8, nil)
	assert.Len(t, events, 8)
	assert.Equal(t, 8, provider.lastCount)
}

func TestLoadTimeline_DefaultCountAndTrim(t *testing.T) {
	provider := &fakeProvider{events: sampleEvents(12)}
	events := LoadTimeline(context.Background(), provider, 0, nil)
	assert.Equal(t, DefaultTimelineCount, provider.lastCount)
	assert.Len(t, events, DefaultTimelineCount)
}

func TestLoadTimeline_FailureYieldsEmpty(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	provider := &fakeProvider{eventsErr: ErrMalformedResponse}

	events := LoadTimeline(context.Background(), provider, 8, zap.New(core))
	assert.NotNil(t, events)
	assert.Empty(t, events)
	assert.Equal(t, 1, logs.FilterMessage("Timeline unavailable").Len())
}
