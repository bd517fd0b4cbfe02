// Package summarize condenses assembled transcripts into short prose
// summaries via the OpenAI chat completion API.
package summarize

import "context"

// Summarizer generates summaries of transcript text.
type Summarizer interface {
	// Summarize condenses text following prompt. An empty prompt falls
	// back to DefaultPrompt. Returns the generated summary or an error;
	// callers decide whether a failed summary is fatal.
	Summarize(ctx context.Context, text, prompt string) (string, error)
}

// systemInstruction frames every summarization request. The user prompt
// carries the per-run focus; this part stays constant.
const systemInstruction = `You summarize transcripts of voice recordings. ` +
	`Work only from the transcript text and keep the speaker's meaning; never add facts. ` +
	`Transcription artifacts (filler words, false starts, repeated phrases) are noise, not content. ` +
	`Answer in the language the transcript is written in unless the instructions say otherwise.`

// DefaultPrompt is the user prompt applied when the caller supplies none.
const DefaultPrompt = `Summarize this transcript. Open with one sentence on what it is about, ` +
	`then list the key points, decisions, and action items as short bullets.`

// Roughly one token per three characters. English runs closer to four,
// but transcripts come in any language and three covers the dense ones.
const defaultCharsPerToken = 3

// estimateTokens approximates what text will cost in tokens.
func estimateTokens(text string) int {
	return len(text) / defaultCharsPerToken
}
