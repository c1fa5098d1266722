package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"mockinterview/internal/config"
	"mockinterview/internal/interview"
	"mockinterview/internal/logging"
	"mockinterview/internal/services"
)

const llmSystemPrompt = `You are an experienced interview coach reviewing a mock video interview.
Reply with a JSON object with exactly these keys:
"feedback": two or three sentences of overall feedback addressed to the candidate,
"strengths": an array of three short strengths,
"improvements": an array of three short, actionable improvements.
Base your comments on the questions and the candidate's notes only.`

// LLMScorer asks an OpenAI-compatible model for feedback text. Numeric scores
// always come from the base scorer.
type LLMScorer struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	base        *RandomScorer
	logger      *slog.Logger
}

type llmFeedback struct {
	Feedback     string   `json:"feedback"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// NewLLMScorer creates a scorer for cfg. base supplies the scores and the
// fallback text.
func NewLLMScorer(cfg config.LLM, base *RandomScorer, logger *slog.Logger) *LLMScorer {
	if base == nil {
		base = NewRandomScorer()
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}
	return &LLMScorer{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		timeout:     timeout,
		base:        base,
		logger:      logging.NewComponentLogger(logger, "scoring"),
	}
}

// Name identifies the scorer on stored evaluations.
func (s *LLMScorer) Name() string { return "llm" }

// Score never fails; model errors are logged and the canned text is kept.
func (s *LLMScorer) Score(ctx context.Context, session *interview.Session) (interview.Evaluation, error) {
	eval, err := s.base.Score(ctx, session)
	if err != nil {
		return eval, err
	}

	feedback, err := s.feedback(ctx, session)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "llm feedback unavailable; using canned feedback", "llm_feedback_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check llm.base_url, llm.model and the API key"),
			logging.String(logging.FieldImpact, "evaluation uses generic feedback text"),
		)
		eval.Scorer = s.Name() + "-fallback"
		return eval, nil
	}

	eval.Feedback = feedback.Feedback
	if len(feedback.Strengths) > 0 {
		eval.Strengths = feedback.Strengths
	}
	if len(feedback.Improvements) > 0 {
		eval.Improvements = feedback.Improvements
	}
	eval.Scorer = s.Name()
	return eval, nil
}

func (s *LLMScorer) feedback(ctx context.Context, session *interview.Session) (llmFeedback, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: s.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: llmSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: transcript(session)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return llmFeedback{}, services.Wrap(services.ErrExternalService, "scoring", "chat completion", "", err)
	}
	if len(resp.Choices) == 0 {
		return llmFeedback{}, services.Wrap(services.ErrExternalService, "scoring", "chat completion", "no choices returned", nil)
	}
	return parseFeedback(resp.Choices[0].Message.Content)
}

func parseFeedback(content string) (llmFeedback, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var out llmFeedback
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &out); err != nil {
		return llmFeedback{}, services.Wrap(services.ErrExternalService, "scoring", "parse feedback", "model reply is not valid JSON", err)
	}
	out.Feedback = strings.TrimSpace(out.Feedback)
	if out.Feedback == "" {
		return llmFeedback{}, services.Wrap(services.ErrExternalService, "scoring", "parse feedback", "", errors.New("empty feedback"))
	}
	out.Strengths = trimmed(out.Strengths)
	out.Improvements = trimmed(out.Improvements)
	return out, nil
}

func trimmed(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func transcript(session *interview.Session) string {
	if session == nil {
		return "No interview data."
	}
	var b strings.Builder
	if session.Role != "" {
		fmt.Fprintf(&b, "Role: %s\n", session.Role)
	}
	for i, q := range session.Questions {
		fmt.Fprintf(&b, "Q%d (%s): %s\n", i+1, q.Category, q.Text)
		if r, ok := session.ResponseFor(q.ID); ok {
			fmt.Fprintf(&b, "A%d (%ds): %s\n", i+1, r.DurationSeconds, r.Notes)
		} else {
			fmt.Fprintf(&b, "A%d: not answered\n", i+1)
		}
	}
	return b.String()
}
