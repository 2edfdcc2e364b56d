package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// MessagesAPI is the slice of the Anthropic SDK the client uses. Narrow so
// tests can substitute a fake.
type MessagesAPI interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Anthropic implements Client on the Anthropic Messages API.
//
// SDK-level retries are disabled: the generation engine owns its own retry
// policy (overload backoff nested inside the validation loop) and stacking
// the SDK's on top would multiply the delays.
type Anthropic struct {
	messages  MessagesAPI
	model     anthropic.Model
	maxTokens int64
}

// AnthropicOption overrides parts of the client construction.
type AnthropicOption func(*Anthropic)

// WithMessagesAPI injects a pre-built messages API. Used by tests.
func WithMessagesAPI(api MessagesAPI) AnthropicOption {
	return func(a *Anthropic) {
		a.messages = api
	}
}

// NewAnthropic builds the provider client from cfg.
func NewAnthropic(cfg Config, opts ...AnthropicOption) (*Anthropic, error) {
	a := &Anthropic{
		model:     anthropic.Model(cfg.Model),
		maxTokens: cfg.MaxTokens,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.messages == nil {
		if cfg.APIKey == "" {
			return nil, ErrMissingAPIKey
		}
		client := anthropic.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithMaxRetries(0),
		)
		a.messages = &client.Messages
	}

	return a, nil
}

// CreateMessage sends one request and returns the first text content part
// along with the stop reason and token usage.
func (a *Anthropic) CreateMessage(ctx context.Context, req Request) (*Response, error) {
	params, err := a.buildParams(req)
	if err != nil {
		return nil, err
	}

	msg, err := a.messages.New(ctx, params)
	if err != nil {
		return nil, classifyAnthropicError(err)
	}

	resp := &Response{
		ID:         msg.ID,
		StopReason: StopReason(msg.StopReason),
		Usage: Usage{
			InputTokens:              msg.Usage.InputTokens,
			OutputTokens:             msg.Usage.OutputTokens,
			CacheCreationInputTokens: msg.Usage.CacheCreationInputTokens,
			CacheReadInputTokens:     msg.Usage.CacheReadInputTokens,
		},
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			resp.Text = block.Text
			break
		}
	}
	if resp.Text == "" {
		return nil, ErrNoTextContent
	}

	return resp, nil
}

func (a *Anthropic) buildParams(req Request) (anthropic.MessageNewParams, error) {
	params := anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: a.maxTokens,
	}
	if req.Model != "" {
		params.Model = anthropic.Model(req.Model)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = req.MaxTokens
	}

	if req.System != "" {
		system := anthropic.TextBlockParam{Text: req.System}
		if req.CacheSystem {
			system.CacheControl = anthropic.NewCacheControlEphemeralParam()
		}
		params.System = []anthropic.TextBlockParam{system}
	}

	params.Messages = make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(m.Parts))
		for _, p := range m.Parts {
			switch {
			case p.Image != nil:
				blocks = append(blocks, anthropic.NewImageBlockBase64(p.Image.MediaType, p.Image.Data))
			default:
				block := anthropic.NewTextBlock(p.Text)
				if p.Cache {
					block.OfText.CacheControl = anthropic.NewCacheControlEphemeralParam()
				}
				blocks = append(blocks, block)
			}
		}

		switch m.Role {
		case RoleUser:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(blocks...))
		case RoleAssistant:
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(blocks...))
		default:
			return anthropic.MessageNewParams{}, fmt.Errorf("unsupported message role %q", m.Role)
		}
	}

	return params, nil
}

// classifyAnthropicError maps provider failures onto the package's
// sentinels. Overload is HTTP 529 or an "overloaded" error body; context
// errors pass through untouched so callers can distinguish their own
// timeout from provider failures.
func classifyAnthropicError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == 529 {
		return fmt.Errorf("%w: %v", ErrOverloaded, err)
	}
	if strings.Contains(strings.ToLower(err.Error()), "overload") {
		return fmt.Errorf("%w: %v", ErrOverloaded, err)
	}

	return fmt.Errorf("anthropic: %w", err)
}
