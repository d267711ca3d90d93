package partyhistory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name       string
		score      int
		total      int
		percentage int
		tier       Tier
	}{
		{"perfect", 5, 5, 100, TierExpert},
		{"exactly eighty", 4, 5, 80, TierExpert},
		{"just under eighty", 79, 100, 79, TierGood},
		{"exactly sixty", 3, 5, 60, TierGood},
		{"just under sixty", 59, 100, 59, TierKeepTrying},
		{"zero", 0, 5, 0, TierKeepTrying},
		{"two thirds", 2, 3, 67, TierGood},
		{"one eighth rounds up", 1, 8, 13, TierKeepTrying},
		{"no questions", 0, 0, 0, TierKeepTrying},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summarize(tt.score, tt.total)
			assert.Equal(t, tt.percentage, s.Percentage)
			assert.Equal(t, tt.tier, s.Tier)
			assert.Equal(t, tierComments[tt.tier], s.Comment)
			assert.Equal(t, tt.score, s.Score)
			assert.Equal(t, tt.total, s.Total)
		})
	}
}

func TestSummarize_Comments(t *testing.T) {
	assert.Equal(t, "太棒了！您是党史小专家！", Summarize(5, 5).Comment)
	assert.Equal(t, "成绩不错，温故而知新。", Summarize(3, 5).Comment)
	assert.Equal(t, "继续努力！", Summarize(1, 5).Comment)
}
