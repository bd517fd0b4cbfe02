package summarize

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/RedAIToronto/voice/internal/apierr"
)

// Chat completion configuration.
const (
	defaultSummaryModel    = openai.GPT4oMini
	defaultMaxInputTokens  = 100000
	defaultMaxOutputTokens = 4096

	// Retry configuration: fewer retries than the transcription client,
	// chat completions have longer latency per attempt.
	defaultSummaryMaxRetries = 3
	defaultSummaryBaseDelay  = 1 * time.Second
	defaultSummaryMaxDelay   = 30 * time.Second
)

// chatCompleter is the slice of the OpenAI client the summarizer uses;
// tests substitute their own.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Compile-time interface compliance checks.
var (
	_ Summarizer    = (*OpenAISummarizer)(nil)
	_ chatCompleter = (*openai.Client)(nil)
)

// OpenAISummarizer produces summaries through OpenAI's chat completion
// API, retrying transient failures with exponential backoff.
type OpenAISummarizer struct {
	client         chatCompleter
	model          string
	maxInputTokens int
	maxRetries     int
	baseDelay      time.Duration
	maxDelay       time.Duration
}

// Option configures an OpenAISummarizer.
type Option func(*OpenAISummarizer)

// WithModel sets the chat model used for summaries.
func WithModel(model string) Option {
	return func(s *OpenAISummarizer) {
		if model != "" {
			s.model = model
		}
	}
}

// WithMaxInputTokens sets the estimated input token budget.
func WithMaxInputTokens(n int) Option {
	return func(s *OpenAISummarizer) {
		if n > 0 {
			s.maxInputTokens = n
		}
	}
}

// WithMaxRetries caps how many times a failed completion is retried.
func WithMaxRetries(n int) Option {
	return func(s *OpenAISummarizer) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// WithRetryDelays tunes the backoff schedule between attempts.
func WithRetryDelays(base, max time.Duration) Option {
	return func(s *OpenAISummarizer) {
		if base > 0 {
			s.baseDelay = base
		}
		if max > 0 {
			s.maxDelay = max
		}
	}
}

// NewOpenAISummarizer creates an OpenAISummarizer backed by client.
// Use options to customize the model, token budget, and retry behavior.
func NewOpenAISummarizer(client *openai.Client, opts ...Option) *OpenAISummarizer {
	s := &OpenAISummarizer{
		client:         client,
		model:          defaultSummaryModel,
		maxInputTokens: defaultMaxInputTokens,
		maxRetries:     defaultSummaryMaxRetries,
		baseDelay:      defaultSummaryBaseDelay,
		maxDelay:       defaultSummaryMaxDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize generates a summary of text guided by prompt. An empty prompt
// falls back to DefaultPrompt. Returns ErrTranscriptTooLong if the estimated
// token count exceeds the input budget. Transient API errors (rate limits,
// timeouts, server errors) are retried automatically.
func (s *OpenAISummarizer) Summarize(ctx context.Context, text, prompt string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyTranscript
	}
	if prompt == "" {
		prompt = DefaultPrompt
	}

	if estimated := estimateTokens(text); estimated > s.maxInputTokens {
		return "", fmt.Errorf("transcript is around %dK tokens, over the %dK budget: %w",
			estimated/1000, s.maxInputTokens/1000, ErrTranscriptTooLong)
	}

	req := openai.ChatCompletionRequest{
		Model:               s.model,
		MaxCompletionTokens: defaultMaxOutputTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: prompt + "\n\n" + text},
		},
	}

	return s.summarizeWithRetry(ctx, req)
}

// summarizeWithRetry executes the chat completion with exponential backoff retry.
func (s *OpenAISummarizer) summarizeWithRetry(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	cfg := apierr.RetryConfig{
		MaxRetries: s.maxRetries,
		BaseDelay:  s.baseDelay,
		MaxDelay:   s.maxDelay,
	}

	return apierr.RetryWithBackoff(ctx, cfg, func() (string, error) {
		resp, err := s.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", classifySummaryError(err)
		}
		if len(resp.Choices) == 0 {
			return "", ErrNoSummary
		}
		content := strings.TrimSpace(resp.Choices[0].Message.Content)
		if content == "" {
			return "", ErrNoSummary
		}
		return content, nil
	}, nil)
}

// classifySummaryError maps OpenAI API errors to apierr sentinel errors.
func classifySummaryError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			// OpenAI sends 429 both when shedding load and when the
			// account is out of quota; only the former is retryable.
			if strings.Contains(apiErr.Message, "quota") ||
				strings.Contains(apiErr.Message, "billing") {
				return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrQuotaExceeded)
			}
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrRateLimit)
		case http.StatusPaymentRequired:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrQuotaExceeded)
		case http.StatusUnauthorized:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrAuthFailed)
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrTimeout)
		case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrServerError)
		case http.StatusBadRequest:
			// The API reports oversized input as a context length error.
			if strings.Contains(apiErr.Message, "context_length") ||
				strings.Contains(apiErr.Message, "maximum context length") {
				return fmt.Errorf("API rejected: %w", ErrTranscriptTooLong)
			}
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrBadRequest)
		case http.StatusForbidden, http.StatusNotFound:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrBadRequest)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", apierr.ErrTimeout)
	}

	return err
}
