package interview

// fallbackQuestions is the generic interview used when no job post supplies
// authored questions.
var fallbackQuestions = []Question{
	{
		ID:               "fallback-intro",
		Text:             "Tell me about yourself and what drew you to this role.",
		Category:         CategoryGeneral,
		ExpectedDuration: 120,
		Difficulty:       DifficultyEasy,
		Guidance:         []string{"Keep it to your recent experience", "Connect your background to the role"},
	},
	{
		ID:               "fallback-challenge",
		Text:             "Describe a challenging project you worked on and how you handled it.",
		Category:         CategoryBehavioral,
		ExpectedDuration: 150,
		Difficulty:       DifficultyMedium,
		Guidance:         []string{"Situation, task, action, result", "Quantify the outcome if you can"},
	},
	{
		ID:               "fallback-teamwork",
		Text:             "Tell me about a time you disagreed with a teammate. How did you resolve it?",
		Category:         CategoryBehavioral,
		ExpectedDuration: 120,
		Difficulty:       DifficultyMedium,
	},
	{
		ID:               "fallback-technical",
		Text:             "Walk me through a system you built or maintained, and the trade-offs you made along the way.",
		Category:         CategoryTechnical,
		ExpectedDuration: 150,
		Difficulty:       DifficultyHard,
		Guidance:         []string{"Start with the problem it solved", "Explain one decision you would revisit"},
	},
	{
		ID:               "fallback-growth",
		Text:             "Where do you want to grow professionally over the next few years?",
		Category:         CategoryGeneral,
		ExpectedDuration: 90,
		Difficulty:       DifficultyEasy,
	},
}

// FallbackQuestions returns a fresh copy of the generic five-question set.
func FallbackQuestions() []Question {
	out := make([]Question, len(fallbackQuestions))
	for i, q := range fallbackQuestions {
		q.Guidance = append([]string(nil), q.Guidance...)
		out[i] = q
	}
	return out
}

// TotalExpectedSeconds sums the expected answer time across questions.
func TotalExpectedSeconds(questions []Question) int {
	total := 0
	for _, q := range questions {
		total += q.ExpectedDuration
	}
	return total
}
