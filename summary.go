package partyhistory

import "math"

// Tier is the qualitative band of a finished quiz
type Tier string

const (
	TierExpert     Tier = "expert"
	TierGood       Tier = "good"
	TierKeepTrying Tier = "keep_trying"
)

// Band lower bounds, inclusive.
const (
	expertThreshold = 80
	goodThreshold   = 60
)

var tierComments = map[Tier]string{
	TierExpert:     "太棒了！您是党史小专家！",
	TierGood:       "成绩不错，温故而知新。",
	TierKeepTrying: "继续努力！",
}

// Summary is the result screen of a finished quiz
type Summary struct {
	Score      int    `json:"score"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
	Tier       Tier   `json:"tier"`
	Comment    string `json:"comment"`
}

// Summarize computes the percentage (rounded half up) and comment band for
// score out of total.
func Summarize(score, total int) Summary {
	percentage := 0
	if total > 0 {
		percentage = int(math.Round(float64(score) / float64(total) * 100))
	}

	tier := TierKeepTrying
	switch {
	case percentage >= expertThreshold:
		tier = TierExpert
	case percentage >= goodThreshold:
		tier = TierGood
	}

	return Summary{
		Score:      score,
		Total:      total,
		Percentage: percentage,
		Tier:       tier,
		Comment:    tierComments[tier],
	}
}
