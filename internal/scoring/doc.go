// Package scoring synthesizes the Evaluation attached to a completed
// interview. Scores are placeholders drawn uniformly above fixed floors; no
// response content is analysed. LLMScorer keeps those numbers and asks an
// OpenAI-compatible model for the written feedback, falling back to canned
// text when the model is unavailable.
package scoring
