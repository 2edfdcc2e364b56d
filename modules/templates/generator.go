package templates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/llm"
)

const (
	// MaxAttempts is the validation retry budget. Fixed policy, not
	// configuration: every attempt costs a full model call and prompt
	// growth makes later attempts increasingly expensive.
	MaxAttempts = 5

	// MaxImageAttachments bounds reference images per request.
	MaxImageAttachments = 5

	// Overload retries are nested inside a single validation attempt:
	// the same attempt is re-sent with linear backoff before the whole
	// request fails as busy.
	overloadTries       = 3
	overloadBackoffStep = 2 * time.Second

	defaultRequestTimeout = 2 * time.Minute
)

// Assistant messages surfaced in the chat transcript alongside the result.
const (
	successMessage  = "Here is your email template. Tell me what you would like to change."
	fallbackMessage = "I could not produce a valid template for this request, so a placeholder explaining the failure was generated instead. Please simplify the request and try again."
)

// Generator owns the bounded-retry generation loop: build prompt, call the
// model, extract, validate, feed errors back, and synthesize a fallback
// when the budget runs out. One Generator serves concurrent requests; all
// per-request state lives on the stack.
type Generator struct {
	client    llm.Client
	validator *Validator
	log       *slog.Logger
	timeout   time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
}

type GeneratorOption func(*Generator)

// WithTimeout bounds each individual model call. A call that exceeds it
// fails the whole request; it is not retried through the validation loop.
func WithTimeout(d time.Duration) GeneratorOption {
	return func(g *Generator) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithGeneratorLogger overrides the default slog logger.
func WithGeneratorLogger(log *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		if log != nil {
			g.log = log
		}
	}
}

// WithSleep overrides the backoff sleeper. Tests use it to skip real
// overload backoff delays.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) GeneratorOption {
	return func(g *Generator) {
		if sleep != nil {
			g.sleep = sleep
		}
	}
}

func NewGenerator(client llm.Client, validator *Validator, opts ...GeneratorOption) *Generator {
	g := &Generator{
		client:    client,
		validator: validator,
		log:       slog.Default(),
		timeout:   defaultRequestTimeout,
		sleep:     sleepWithContext,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate runs the attempt loop for one request.
//
// Attempts are strictly sequential and each sees the full transcript of
// everything before it: the raw assistant reply is appended after every
// call, and rejected attempts additionally append a corrective user turn.
// When the budget is exhausted the fallback document is returned as a
// normal outcome with HadErrors set, never as an error; fatal conditions
// (timeout, exhausted overload retries, truncated output) are the only
// error returns.
func (g *Generator) Generate(ctx context.Context, req GenerationRequest) (*GenerationOutcome, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	if len(req.Images) > MaxImageAttachments {
		return nil, fmt.Errorf("%w: got %d, limit is %d", ErrTooManyImages, len(req.Images), MaxImageAttachments)
	}

	system, messages := BuildMessages(req)

	var failures []AttemptFailure
	lastError := ""

	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		raw, err := g.callModel(ctx, system, messages)
		if err != nil {
			return nil, err
		}

		// The raw reply joins the transcript before extraction so every
		// later attempt sees the complete exchange.
		messages = append(messages, llm.AssistantMessage(raw))

		doc, strategy, err := ExtractDocument(raw)
		if err != nil {
			lastError = err.Error()
			failures = append(failures, AttemptFailure{Attempt: attempt, Kind: FailureExtraction, Message: lastError})
			g.log.Warn("document extraction failed",
				slog.Int("attempt", attempt),
				slog.Int("response_length", len(raw)),
				slog.String("error", lastError))
			if attempt < MaxAttempts {
				messages = append(messages, llm.UserMessage(llm.Text(CorrectiveFeedback(lastError, "", attempt))))
			}
			continue
		}

		result := g.validator.Validate(ctx, doc)
		if result.Valid {
			g.log.Info("template generated",
				slog.Int("attempt", attempt),
				slog.String("strategy", strategy),
				slog.Int("document_length", len(doc)))
			return &GenerationOutcome{
				Document:         doc,
				AssistantMessage: successMessage,
				ConversationID:   req.ConversationID,
				AttemptsUsed:     attempt,
				HadErrors:        attempt > 1,
				Failures:         failures,
			}, nil
		}

		lastError = result.Error
		failures = append(failures, AttemptFailure{Attempt: attempt, Kind: FailureValidation, Message: lastError})
		g.log.Warn("document validation failed",
			slog.Int("attempt", attempt),
			slog.String("strategy", strategy),
			slog.String("error", lastError))
		if attempt < MaxAttempts {
			messages = append(messages, llm.UserMessage(llm.Text(CorrectiveFeedback(lastError, doc, attempt))))
		}
	}

	g.log.Warn("generation budget exhausted, returning fallback document",
		slog.Int("attempts", MaxAttempts),
		slog.String("last_error", lastError))
	return &GenerationOutcome{
		Document:         FallbackDocument(req.Prompt, lastError, MaxAttempts),
		AssistantMessage: fallbackMessage,
		ConversationID:   req.ConversationID,
		AttemptsUsed:     MaxAttempts,
		HadErrors:        true,
		Failures:         failures,
	}, nil
}

// Refine rewrites an existing document according to user feedback. It is a
// thin wrapper over Generate with a synthetic prompt embedding the current
// document, so it inherits the full retry and fallback behavior.
func (g *Generator) Refine(ctx context.Context, req RefineRequest) (*GenerationOutcome, error) {
	if strings.TrimSpace(req.Feedback) == "" {
		return nil, ErrEmptyFeedback
	}
	return g.Generate(ctx, GenerationRequest{
		Prompt:            refinePrompt(req.Document, req.Feedback),
		ConversationID:    req.ConversationID,
		History:           req.History,
		UserID:            req.UserID,
		Images:            req.Images,
		ExtractedFileText: req.ExtractedFileText,
	})
}

func refinePrompt(document, feedback string) string {
	var b strings.Builder
	b.WriteString("Here is the current MJML template:\n\n")
	b.WriteString(document)
	b.WriteString("\n\nApply the following changes and return the full updated document:\n")
	b.WriteString(feedback)
	return b.String()
}

// callModel performs one logical model call, absorbing transient overloads
// with linear backoff. Timeouts and truncated replies are fatal for the
// whole request, distinct from validation failures which the caller
// retries through the attempt loop.
func (g *Generator) callModel(ctx context.Context, system string, messages []llm.Message) (string, error) {
	for try := 1; ; try++ {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		resp, err := g.client.CreateMessage(callCtx, llm.Request{
			System:      system,
			CacheSystem: true,
			Messages:    messages,
		})
		cancel()

		switch {
		case err == nil:
			if resp.StopReason.Truncated() {
				return "", ErrTruncatedOutput
			}
			g.log.Debug("model responded",
				slog.String("response_id", resp.ID),
				slog.String("stop_reason", string(resp.StopReason)),
				slog.Int64("input_tokens", resp.Usage.InputTokens),
				slog.Int64("output_tokens", resp.Usage.OutputTokens),
				slog.Int64("cache_read_tokens", resp.Usage.CacheReadInputTokens))
			return resp.Text, nil

		case errors.Is(err, context.Canceled):
			return "", err

		case errors.Is(err, context.DeadlineExceeded):
			return "", fmt.Errorf("%w after %s", ErrGenerationTimeout, g.timeout)

		case errors.Is(err, llm.ErrOverloaded):
			if try >= overloadTries {
				return "", fmt.Errorf("%w: gave up after %d tries", ErrServiceBusy, overloadTries)
			}
			wait := time.Duration(try) * overloadBackoffStep
			g.log.Warn("model overloaded, backing off",
				slog.Int("try", try),
				slog.Duration("wait", wait))
			if err := g.sleep(ctx, wait); err != nil {
				return "", err
			}

		default:
			return "", fmt.Errorf("model call failed: %w", err)
		}
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
