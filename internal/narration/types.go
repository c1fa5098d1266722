package narration

import "context"

// Kind labels what an utterance is for.
type Kind string

const (
	KindGreeting   Kind = "greeting"
	KindQuestion   Kind = "question"
	KindTransition Kind = "transition"
	KindClosing    Kind = "closing"
)

// Item is a request to speak text.
type Item struct {
	Text    string
	Kind    Kind
	OnStart func(Utterance)
	OnEnd   func(End)
}

// Utterance is an item accepted by the queue.
type Utterance struct {
	ID    uint64 `json:"id"`
	Text  string `json:"text"`
	Kind  Kind   `json:"kind"`
	Voice Voice  `json:"voice"`
}

// End reports how an utterance finished.
type End struct {
	Utterance
	Canceled bool
	Err      error
}

// Voice is a synthesizer voice.
type Voice struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Locale string `json:"locale"`
}

// Synthesizer renders utterances as speech.
type Synthesizer interface {
	// Play starts speaking and calls done once playback finishes or fails.
	// Canceling ctx stops playback; done may then receive ctx.Err().
	Play(ctx context.Context, u Utterance, done func(error))
	Voices(ctx context.Context) ([]Voice, error)
}
