package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/RedAIToronto/voice/internal/apierr"
	"github.com/RedAIToronto/voice/internal/format"
)

// Default client configuration.
const (
	defaultMaxRetries      = 5
	defaultBaseDelay       = 1 * time.Second
	defaultMaxDelay        = 30 * time.Second
	defaultPollInterval    = 2 * time.Second
	defaultMaxPollInterval = 30 * time.Second
	defaultAwaitTimeout    = 30 * time.Minute
)

// transcriptsPath is the collection endpoint for transcription jobs.
const transcriptsPath = "/v1/transcripts"

// errJobPending drives the polling loop: the poll operation returns it
// while the job has not reached a terminal status.
var errJobPending = errors.New("job still pending")

// Transcriber turns one audio file into one transcript fragment.
type Transcriber interface {
	// Transcribe submits the audio file and waits for a terminal outcome.
	// The outcome is encoded in the returned Fragment's Status; transport
	// and service failures become FragmentFailed (or FragmentIncomplete
	// when no terminal state was ever observed), never a returned fault.
	Transcribe(ctx context.Context, audioPath string) Fragment
}

// httpDoer abstracts the HTTP client for testing.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Compile-time interface compliance check.
var _ Transcriber = (*Client)(nil)

// Client talks to an asynchronous transcription service: it uploads one
// chunk, receives a job id, and polls until the job reports a terminal
// status. One Client is safe for sequential reuse across chunks.
type Client struct {
	baseURL    string
	apiKey     string
	language   string
	model      string
	httpClient httpDoer

	// Submission retry (transient HTTP failures).
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration

	// Polling cadence and ceiling.
	pollInterval    time.Duration
	maxPollInterval time.Duration
	awaitTimeout    time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c httpDoer) ClientOption {
	return func(cl *Client) { cl.httpClient = c }
}

// WithLanguage sets the language hint sent with each submission.
// Empty means let the service detect the language.
func WithLanguage(code string) ClientOption {
	return func(cl *Client) { cl.language = code }
}

// WithModel sets the model name sent with each submission.
// Empty means let the service pick its default.
func WithModel(model string) ClientOption {
	return func(cl *Client) { cl.model = model }
}

// WithMaxRetries sets the maximum number of submission retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(cl *Client) {
		if n >= 0 {
			cl.maxRetries = n
		}
	}
}

// WithRetryDelays sets the base and max delays for submission retries.
func WithRetryDelays(base, max time.Duration) ClientOption {
	return func(cl *Client) {
		if base > 0 {
			cl.baseDelay = base
		}
		if max > 0 {
			cl.maxDelay = max
		}
	}
}

// WithPollInterval sets the initial interval between status polls.
func WithPollInterval(d time.Duration) ClientOption {
	return func(cl *Client) {
		if d > 0 {
			cl.pollInterval = d
		}
	}
}

// WithMaxPollInterval caps the interval between status polls.
func WithMaxPollInterval(d time.Duration) ClientOption {
	return func(cl *Client) {
		if d > 0 {
			cl.maxPollInterval = d
		}
	}
}

// WithAwaitTimeout bounds the total time spent waiting for one job.
func WithAwaitTimeout(d time.Duration) ClientOption {
	return func(cl *Client) {
		if d > 0 {
			cl.awaitTimeout = d
		}
	}
}

// NewClient creates a Client for the service at baseURL. apiKey may be
// empty for unauthenticated deployments.
func NewClient(baseURL, apiKey string, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("baseURL cannot be empty")
	}
	c := &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		apiKey:          apiKey,
		httpClient:      &http.Client{Timeout: 5 * time.Minute},
		maxRetries:      defaultMaxRetries,
		baseDelay:       defaultBaseDelay,
		maxDelay:        defaultMaxDelay,
		pollInterval:    defaultPollInterval,
		maxPollInterval: defaultMaxPollInterval,
		awaitTimeout:    defaultAwaitTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Transcribe implements Transcriber.
func (c *Client) Transcribe(ctx context.Context, audioPath string) Fragment {
	id, err := c.submitWithRetry(ctx, audioPath)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Fragment{Status: FragmentIncomplete, Err: err}
		}
		return Fragment{Status: FragmentFailed, Err: fmt.Errorf("submit chunk: %w", err)}
	}
	return c.await(ctx, id)
}

// submitWithRetry uploads the chunk, retrying transient failures.
func (c *Client) submitWithRetry(ctx context.Context, audioPath string) (string, error) {
	cfg := apierr.RetryConfig{
		MaxRetries: c.maxRetries,
		BaseDelay:  c.baseDelay,
		MaxDelay:   c.maxDelay,
	}
	return apierr.RetryWithBackoff(ctx, cfg, func() (string, error) {
		return c.submit(ctx, audioPath)
	}, nil)
}

// submit streams the audio file to the service as a multipart form and
// returns the created job's id. The file is piped straight into the HTTP
// request body so chunks never have to fit in memory.
func (c *Client) submit(ctx context.Context, audioPath string) (string, error) {
	file, err := os.Open(audioPath) // #nosec G304 -- audioPath comes from internal chunking
	if err != nil {
		return "", fmt.Errorf("failed to open audio file: %w", err)
	}
	defer func() { _ = file.Close() }()

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := c.writeSubmitForm(form, file, filepath.Base(audioPath))
		if err != nil {
			_ = pw.CloseWithError(err)
			if errors.Is(err, io.ErrClosedPipe) {
				// The reading side failed first; its error wins.
				return nil
			}
			return err
		}
		return pw.Close()
	})

	var id string
	g.Go(func() error {
		req, err := http.NewRequestWithContext(gctx, http.MethodPost, c.baseURL+transcriptsPath, pr)
		if err != nil {
			_ = pr.CloseWithError(err)
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", form.FormDataContentType())
		c.setAuth(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return classifyTransportError(err)
		}
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			return classifyHTTPStatus(resp.StatusCode, body)
		}

		var sub submitResponse
		if err := json.Unmarshal(body, &sub); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		if sub.ID == "" {
			return fmt.Errorf("%w: response carries no job id", ErrInvalidResponse)
		}
		id = sub.ID
		return nil
	})

	if err := g.Wait(); err != nil {
		return "", err
	}
	return id, nil
}

// writeSubmitForm writes the submission form: metadata fields first so the
// service can start routing before the upload finishes, then the file part.
func (c *Client) writeSubmitForm(form *multipart.Writer, file io.Reader, filename string) error {
	if c.language != "" {
		if err := form.WriteField("language", c.language); err != nil {
			return fmt.Errorf("failed to write language field: %w", err)
		}
	}
	if c.model != "" {
		if err := form.WriteField("model", c.model); err != nil {
			return fmt.Errorf("failed to write model field: %w", err)
		}
	}
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to copy file to form: %w", err)
	}
	return form.Close()
}

// await polls the job until it reaches a terminal status, the await
// ceiling expires, or ctx is canceled. The cadence is exponential: quick
// first checks for short chunks, backing off for long ones.
func (c *Client) await(ctx context.Context, id string) Fragment {
	var (
		job  jobResponse
		seen = JobUnknown
	)

	operation := func() error {
		resp, err := c.getJob(ctx, id)
		if err != nil {
			if !apierr.Retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		job = resp
		seen = parseJobStatus(resp.Status)
		if seen.terminal() {
			return nil
		}
		return errJobPending
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.pollInterval
	bo.MaxInterval = c.maxPollInterval
	bo.MaxElapsedTime = c.awaitTimeout

	err := backoff.Retry(operation, backoff.WithContext(bo, ctx))
	switch {
	case err == nil:
		return terminalFragment(job, seen)
	case ctx.Err() != nil:
		return Fragment{Status: FragmentIncomplete, Err: ctx.Err()}
	case errors.Is(err, errJobPending):
		if seen == JobUnknown {
			return Fragment{
				Status: FragmentIncomplete,
				Err:    fmt.Errorf("%w: job %s last reported %q", ErrUnknownStatus, id, job.Status),
			}
		}
		return Fragment{
			Status: FragmentFailed,
			Err: fmt.Errorf("%w: job %s still %s after %s",
				ErrAwaitTimeout, id, seen, format.DurationHuman(c.awaitTimeout)),
		}
	default:
		return Fragment{Status: FragmentFailed, Err: fmt.Errorf("poll job %s: %w", id, err)}
	}
}

// terminalFragment maps a terminal job onto its Fragment.
func terminalFragment(job jobResponse, status JobStatus) Fragment {
	switch status {
	case JobCompleted:
		return Fragment{Text: job.Text, Status: FragmentSuccess}
	case JobError:
		reason := job.Error
		if reason == "" {
			reason = "no reason given"
		}
		return Fragment{Status: FragmentFailed, Err: fmt.Errorf("%w: %s", ErrJobFailed, reason)}
	default:
		return Fragment{
			Status: FragmentIncomplete,
			Err:    fmt.Errorf("%w: %q", ErrUnknownStatus, job.Status),
		}
	}
}

// getJob fetches the current state of one transcription job.
func (c *Client) getJob(ctx context.Context, id string) (jobResponse, error) {
	u := c.baseURL + transcriptsPath + "/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return jobResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return jobResponse{}, classifyTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return jobResponse{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return jobResponse{}, classifyHTTPStatus(resp.StatusCode, body)
	}

	var job jobResponse
	if err := json.Unmarshal(body, &job); err != nil {
		return jobResponse{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return job, nil
}

// setAuth attaches the bearer token when one is configured.
func (c *Client) setAuth(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// submitResponse is the service's reply to a new transcription job.
type submitResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// jobResponse is the service's view of a transcription job.
type jobResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error"`
}

// errorResponse is the error envelope on non-2xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// classifyTransportError maps transport-level failures onto apierr
// sentinels so the retry layer can tell transient from permanent.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", apierr.ErrTimeout)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%v: %w", err, apierr.ErrTimeout)
	}
	// Connection refused, DNS failures and friends: the service may just
	// be restarting, so treat these as retryable.
	return fmt.Errorf("%v: %w", err, apierr.ErrServerError)
}

// classifyHTTPStatus maps service error responses onto apierr sentinels.
func classifyHTTPStatus(statusCode int, body []byte) error {
	msg := errorMessage(body)
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d %s", statusCode, http.StatusText(statusCode))
	}
	switch {
	case statusCode == http.StatusTooManyRequests:
		if strings.Contains(msg, "quota") || strings.Contains(msg, "billing") {
			return fmt.Errorf("%s: %w", msg, apierr.ErrQuotaExceeded)
		}
		return fmt.Errorf("%s: %w", msg, apierr.ErrRateLimit)
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return fmt.Errorf("%s: %w", msg, apierr.ErrAuthFailed)
	case statusCode == http.StatusRequestTimeout || statusCode == http.StatusGatewayTimeout:
		return fmt.Errorf("%s: %w", msg, apierr.ErrTimeout)
	case statusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%s: %w", msg, apierr.ErrServerError)
	case statusCode >= http.StatusBadRequest:
		return fmt.Errorf("%s: %w", msg, apierr.ErrBadRequest)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, msg)
	}
}

// errorMessage extracts the error string from a service error envelope,
// falling back to the raw body.
func errorMessage(body []byte) string {
	var envelope errorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	return strings.TrimSpace(string(body))
}
