package scoring

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"mockinterview/internal/config"
	"mockinterview/internal/interview"
)

// Scorer produces the evaluation for a finished session.
type Scorer interface {
	Name() string
	Score(ctx context.Context, session *interview.Session) (interview.Evaluation, error)
}

// Range is an inclusive score interval.
type Range struct {
	Min int
	Max int
}

// Bounds holds the interval for every sub-score.
type Bounds struct {
	Overall       Range
	Communication Range
	Technical     Range
	BodyLanguage  Range
	Confidence    Range
	Presentation  Range
	PerQuestion   Range
}

// DefaultBounds are the placeholder score ranges.
var DefaultBounds = Bounds{
	Overall:       Range{70, 99},
	Communication: Range{65, 94},
	Technical:     Range{60, 94},
	BodyLanguage:  Range{70, 94},
	Confidence:    Range{65, 94},
	Presentation:  Range{80, 99},
	PerQuestion:   Range{60, 99},
}

var strengthPool = []string{
	"Clear and structured answers",
	"Good use of concrete examples",
	"Confident delivery",
	"Steady pacing throughout the interview",
	"Strong connection between experience and the role",
	"Thoughtful reflection on past decisions",
}

var improvementPool = []string{
	"Quantify the impact of your work more often",
	"Keep answers closer to the expected length",
	"Maintain eye contact with the camera",
	"Pause briefly before answering to organize your thoughts",
	"Close each answer with a short summary",
	"Go deeper on technical trade-offs",
}

// RandomScorer draws every score independently within Bounds.
type RandomScorer struct {
	bounds Bounds
	now    func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomScorer returns a scorer seeded from the runtime source.
func NewRandomScorer() *RandomScorer {
	return NewSeededRandomScorer(rand.Uint64(), rand.Uint64())
}

// NewSeededRandomScorer returns a reproducible scorer.
func NewSeededRandomScorer(seed1, seed2 uint64) *RandomScorer {
	return &RandomScorer{
		bounds: DefaultBounds,
		now:    time.Now,
		rng:    rand.New(rand.NewPCG(seed1, seed2)),
	}
}

// Name identifies the scorer on stored evaluations.
func (s *RandomScorer) Name() string { return "random" }

// Score never fails.
func (s *RandomScorer) Score(_ context.Context, session *interview.Session) (interview.Evaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	eval := interview.Evaluation{
		Overall:        s.draw(s.bounds.Overall),
		Communication:  s.draw(s.bounds.Communication),
		Technical:      s.draw(s.bounds.Technical),
		BodyLanguage:   s.draw(s.bounds.BodyLanguage),
		Confidence:     s.draw(s.bounds.Confidence),
		Presentation:   s.draw(s.bounds.Presentation),
		QuestionScores: map[string]int{},
		GeneratedAt:    s.now().UTC(),
		Scorer:         s.Name(),
	}
	if session != nil {
		for _, r := range session.Responses {
			eval.QuestionScores[r.QuestionID] = s.draw(s.bounds.PerQuestion)
		}
	}
	eval.Strengths = s.pick(strengthPool, 3)
	eval.Improvements = s.pick(improvementPool, 3)
	eval.Feedback = cannedFeedback(session, eval.Overall)
	return eval, nil
}

func (s *RandomScorer) draw(r Range) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + s.rng.IntN(r.Max-r.Min+1)
}

func (s *RandomScorer) pick(pool []string, n int) []string {
	idx := s.rng.Perm(len(pool))
	if n > len(idx) {
		n = len(idx)
	}
	out := make([]string, 0, n)
	for _, i := range idx[:n] {
		out = append(out, pool[i])
	}
	return out
}

func cannedFeedback(session *interview.Session, overall int) string {
	answered, total := 0, 0
	if session != nil {
		answered, total = len(session.Responses), len(session.Questions)
	}
	var b strings.Builder
	switch {
	case overall >= 90:
		b.WriteString("Excellent interview. ")
	case overall >= 80:
		b.WriteString("Strong interview overall. ")
	default:
		b.WriteString("Solid effort with room to grow. ")
	}
	switch {
	case total > 0 && answered == total:
		b.WriteString("You answered every question, ")
	case answered > 0:
		b.WriteString("You answered some of the questions, ")
	default:
		b.WriteString("No recorded answers were captured, ")
	}
	b.WriteString("and your delivery was easy to follow. Focus on the improvement areas below before your next interview.")
	return b.String()
}

// NewScorer builds the scorer selected by configuration.
func NewScorer(cfg *config.Config, logger *slog.Logger) Scorer {
	random := NewRandomScorer()
	if cfg == nil || !strings.EqualFold(cfg.Scoring.Mode, config.ScoringLLM) {
		return random
	}
	return NewLLMScorer(cfg.LLM, random, logger)
}
