package partyhistory

// FallbackQuestions returns the built-in question set used whenever live
// acquisition fails. Each call returns a fresh copy.
func FallbackQuestions() []Question {
	return []Question{
		{
			ID:                 1,
			Text:               "中国共产党诞生的时间是？",
			Options:            []string{"1919年", "1921年", "1927年", "1949年"},
			CorrectOptionIndex: 1,
			Explanation:        "1921年7月23日，中国共产党第一次全国代表大会在上海召开，标志着中国共产党的正式成立。",
		},
	}
}
