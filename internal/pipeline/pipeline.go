// ABOUTME: Submits user turns to the agent webhook with timeout and backoff retry.
// ABOUTME: Record first, then act - the user turn lands in the store before attempt one.

package pipeline

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jplx13/jplx-chat/internal/agent"
	"github.com/jplx13/jplx-chat/internal/store"
	"github.com/jplx13/jplx-chat/internal/upload"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultAttempts = 3
	defaultBackoff  = time.Second

	// fallbackContent is used when a success response carries no content.
	fallbackContent = "I received your message but couldn't generate a proper response."
	// fallbackModel labels assistant turns whose response omits the model.
	fallbackModel = "GPT-4o"
	// errorContent is the transcript entry for a submission that exhausted retries.
	errorContent = "I apologize, but I encountered an error processing your request. " +
		"Please check your connection and try again."
)

// ConversationStore defines what the pipeline needs from storage.
type ConversationStore interface {
	AddMessage(msg store.Message)
}

// StatusSink receives progress and loading updates during a submission.
type StatusSink interface {
	SetProgress(progress int)
	SetLoading(loading bool)
	SetError(msg string)
}

// payload is the JSON body sent to the webhook.
type payload struct {
	Timestamp      string       `json:"timestamp"`
	SessionID      string       `json:"sessionId"`
	ChatInput      string       `json:"chatInput,omitempty"`
	File           *filePayload `json:"file,omitempty"`
	SelectedAgent  string       `json:"selectedAgent,omitempty"`
	ManualOverride bool         `json:"manualOverride,omitempty"`
}

// filePayload carries the whole attachment base64-encoded inside the JSON
// body. No multipart, no streaming - the 10 MiB cap bounds memory.
type filePayload struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
	Data string `json:"data"`
}

// apiResponse is the expected webhook response shape.
type apiResponse struct {
	Response *struct {
		Content string `json:"content"`
		Agent   string `json:"agent"`
		Model   string `json:"model"`
	} `json:"response"`
	Document *struct {
		Generated   bool   `json:"generated"`
		DownloadURL string `json:"downloadUrl"`
	} `json:"document"`
}

// Pipeline submits user turns to the webhook and reconciles the outcome
// into the conversation store. One submission is in flight at a time.
type Pipeline struct {
	webhookURL string
	client     *http.Client
	store      ConversationStore
	status     StatusSink
	logger     *slog.Logger

	timeout  time.Duration
	attempts int
	backoff  time.Duration

	// sleep is swapped out in tests to observe retry delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTimeout overrides the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.timeout = d }
}

// WithRetry overrides the attempt cap and backoff base.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(p *Pipeline) {
		if attempts > 0 {
			p.attempts = attempts
		}
		if backoff > 0 {
			p.backoff = backoff
		}
	}
}

// WithStatusSink attaches a receiver for progress/loading updates.
func WithStatusSink(sink StatusSink) Option {
	return func(p *Pipeline) { p.status = sink }
}

// WithHTTPClient overrides the HTTP client (tests).
func WithHTTPClient(c *http.Client) Option {
	return func(p *Pipeline) { p.client = c }
}

// withSleep overrides the retry delay function (tests).
func withSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Pipeline) { p.sleep = fn }
}

// New builds a pipeline posting to webhookURL and writing into st.
func New(webhookURL string, st ConversationStore, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		webhookURL: webhookURL,
		client:     &http.Client{},
		store:      st,
		logger:     logger.With("component", "pipeline"),
		timeout:    defaultTimeout,
		attempts:   defaultAttempts,
		backoff:    defaultBackoff,
	}
	p.sleep = func(ctx context.Context, d time.Duration) error {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Submit sends one user turn (trimmed text and/or attachment) under the
// given agent key. The user message is appended to the store before any
// network activity; the assistant reply - or a synthetic error turn after
// the final failed attempt - is appended when the submission settles.
// The returned message is the assistant turn; err is the terminal failure,
// already represented in the transcript.
func (p *Pipeline) Submit(ctx context.Context, text string, att *upload.Attachment, agentKey string) (store.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" && att == nil {
		return store.Message{}, fmt.Errorf("nothing to submit")
	}
	if agentKey == "" {
		agentKey = agent.DefaultKey
	}

	p.setLoading(true)
	p.setProgress(0)
	defer func() {
		p.setLoading(false)
		p.setProgress(0)
	}()

	// Record first, then act: the user turn is visible even if every attempt fails.
	userMsg := store.Message{
		ID:        uuid.New().String(),
		Role:      store.RoleUser,
		Content:   text,
		Timestamp: time.Now(),
	}
	if att != nil {
		userMsg.File = &store.FileInfo{Name: att.Name, Size: att.Size, Type: att.MediaType}
	}
	p.store.AddMessage(userMsg)

	body, err := p.buildPayload(text, att, agentKey)
	if err != nil {
		p.setError("Failed to process file. Please try again.")
		return store.Message{}, err
	}
	p.setProgress(50)

	data, err := p.post(ctx, body, agentKey)
	if err != nil {
		msg := p.appendErrorMessage(err)
		return msg, err
	}
	p.setProgress(100)

	msg := p.appendAssistantMessage(data, agentKey)
	return msg, nil
}

// buildPayload assembles the outbound JSON body. A non-default agent key
// rides along with an explicit override flag.
func (p *Pipeline) buildPayload(text string, att *upload.Attachment, agentKey string) ([]byte, error) {
	pl := payload{
		Timestamp: time.Now().Format(time.RFC3339),
		SessionID: uuid.New().String(),
		ChatInput: text,
	}

	if att != nil {
		p.setProgress(25)
		pl.File = &filePayload{
			Name: att.Name,
			Type: att.MediaType,
			Size: att.Size,
			Data: base64.StdEncoding.EncodeToString(att.Data),
		}
	}

	if agentKey != agent.DefaultKey {
		pl.SelectedAgent = agentKey
		pl.ManualOverride = true
		p.logger.Debug("manual agent override", "agent", agentKey)
	}

	return json.Marshal(pl)
}

// post runs the bounded retry loop: up to p.attempts sequential attempts
// with a delay of backoff*2^(n-1) after failed attempt n. The last error is
// returned once the attempt cap is reached.
func (p *Pipeline) post(ctx context.Context, body []byte, agentKey string) (*apiResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		p.logger.Debug("api call", "attempt", attempt, "agent", agentKey)

		data, err := p.attemptOnce(ctx, body)
		if err == nil {
			p.logger.Debug("api success", "attempt", attempt)
			return data, nil
		}
		lastErr = err
		p.logger.Warn("api attempt failed",
			"attempt", attempt,
			"error", err,
			"is_timeout", isTimeout(err))

		if attempt < p.attempts {
			delay := p.backoff * (1 << (attempt - 1))
			p.logger.Debug("retrying", "delay", delay)
			if err := p.sleep(ctx, delay); err != nil {
				return nil, lastErr
			}
		}
	}
	return nil, lastErr
}

// attemptOnce issues a single POST with the per-attempt timeout and
// classifies the failure: timeout, HTTP, parse, or plain transport error.
func (p *Pipeline) attemptOnce(ctx context.Context, body []byte) (*apiResponse, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, p.webhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, p.timeout)
		}
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, p.timeout)
		}
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{Status: resp.StatusCode, Body: string(raw)}
	}

	var data apiResponse
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, &ParseError{Err: err}
	}
	return &data, nil
}

// appendAssistantMessage maps a success response into an assistant turn.
// Missing fields fall back to fixed labels; the download link is attached
// only when the response says a document was actually generated.
func (p *Pipeline) appendAssistantMessage(data *apiResponse, agentKey string) store.Message {
	msg := store.Message{
		ID:        uuid.New().String(),
		Role:      store.RoleAssistant,
		Content:   fallbackContent,
		Agent:     agentKey,
		Model:     fallbackModel,
		Timestamp: time.Now(),
	}
	if data.Response != nil {
		if data.Response.Content != "" {
			msg.Content = data.Response.Content
		}
		if data.Response.Agent != "" {
			msg.Agent = data.Response.Agent
		}
		if data.Response.Model != "" {
			msg.Model = data.Response.Model
		}
	}
	if data.Document != nil && data.Document.Generated {
		msg.DownloadURL = data.Document.DownloadURL
	}

	p.store.AddMessage(msg)
	return msg
}

// appendErrorMessage records the terminal failure as a visible assistant
// turn and raises the matching banner text.
func (p *Pipeline) appendErrorMessage(err error) store.Message {
	if isTimeout(err) {
		p.setError(fmt.Sprintf("Request timed out after %d attempts. Please try again.", p.attempts))
	} else {
		p.setError(fmt.Sprintf("Connection failed after %d attempts. Please try again.", p.attempts))
	}

	msg := store.Message{
		ID:        uuid.New().String(),
		Role:      store.RoleAssistant,
		Content:   errorContent,
		Agent:     "system",
		Model:     "error",
		IsError:   true,
		Timestamp: time.Now(),
	}
	p.store.AddMessage(msg)
	return msg
}

func (p *Pipeline) setProgress(progress int) {
	if p.status != nil {
		p.status.SetProgress(progress)
	}
}

func (p *Pipeline) setLoading(loading bool) {
	if p.status != nil {
		p.status.SetLoading(loading)
	}
}

func (p *Pipeline) setError(msg string) {
	if p.status != nil {
		p.status.SetError(msg)
	}
}
