package interview

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var transitionRemarks = []string{
	"Thank you. Let's move on to the next question.",
	"Great, thanks for sharing that.",
	"Understood. Here is the next one.",
	"Thanks, that's helpful. Let's continue.",
}

var nameCaser = cases.Title(language.English)

// DisplayName normalizes a candidate name for narration, falling back to a
// neutral address when the name is unknown.
func DisplayName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return "there"
	}
	return nameCaser.String(name)
}

// Greeting is the opening remark that names the candidate and the role.
func Greeting(candidate, role, interviewer string) string {
	return fmt.Sprintf(
		"Hello %s, welcome to your interview for %s. I'm %s, and I'll be guiding you through today's questions. Take a moment to get comfortable; we'll begin shortly.",
		DisplayName(candidate), roleOrDefault(role), interviewer,
	)
}

// QuestionPrompt is the spoken form of a question.
func QuestionPrompt(index, total int, q Question) string {
	return fmt.Sprintf("Question %d of %d. %s", index+1, total, strings.TrimSpace(q.Text))
}

// TransitionRemark returns the short remark spoken before question index.
func TransitionRemark(index int) string {
	if index < 0 {
		index = 0
	}
	return transitionRemarks[index%len(transitionRemarks)]
}

// Closing is the personalized remark spoken after the evaluation is ready.
func Closing(candidate, role string) string {
	return fmt.Sprintf(
		"Thank you, %s. That concludes your interview for %s. Your results are being prepared now. Best of luck!",
		DisplayName(candidate), roleOrDefault(role),
	)
}

// WordCount counts whitespace-separated words, used to pace narration.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

func roleOrDefault(role string) string {
	role = strings.TrimSpace(role)
	if role == "" {
		return "this position"
	}
	return role
}
