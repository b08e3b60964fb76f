package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var (
	// ErrStreamingUnsupported is returned by Stream; completions are delivered whole.
	ErrStreamingUnsupported = errors.New("streaming is not supported")
	// ErrInvalidResponse marks a 2xx completion without a first choice.
	ErrInvalidResponse = errors.New("invalid response shape")
)

// StatusError carries a non-2xx upstream status and its raw error body.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}

// CompletionConfig describes an OpenAI-compatible chat-completion endpoint.
type CompletionConfig struct {
	BaseURL    string
	APIKey     string
	CustomerID string
	Model      string
	Timeout    time.Duration
}

// CompletionModel is a chat model issuing exactly one chat-completion request
// per Generate call. Retries are disabled.
type CompletionModel struct {
	model string
	opts  []option.RequestOption
}

var _ model.BaseChatModel = (*CompletionModel)(nil)

// NewCompletionModel validates cfg and returns a CompletionModel.
func NewCompletionModel(cfg CompletionConfig) (*CompletionModel, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("completion base url is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("completion model is required")
	}

	opts := []option.RequestOption{
		option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/") + "/"),
		option.WithMaxRetries(0),
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.CustomerID != "" {
		opts = append(opts, option.WithHeader("CustomerId", cfg.CustomerID))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &CompletionModel{model: cfg.Model, opts: opts}, nil
}

// Generate sends input as one chat-completion request and returns the first choice.
func (m *CompletionModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	modelName := m.model
	options := model.GetCommonOptions(&model.Options{Model: &modelName}, opts...)

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(*options.Model),
		Messages: toCompletionMessages(input),
	}
	if options.Temperature != nil {
		// float32 options carry binary noise; send the value the caller wrote.
		params.Temperature = openai.Float(math.Round(float64(*options.Temperature)*1000) / 1000)
	}
	if options.MaxTokens != nil {
		params.MaxTokens = openai.Int(int64(*options.MaxTokens))
	}

	client := openai.NewClient(m.opts...)
	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, &StatusError{StatusCode: apiErr.StatusCode, Body: errorBody(apiErr)}
		}
		return nil, fmt.Errorf("chat completion request: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, ErrInvalidResponse
	}

	return schema.AssistantMessage(resp.Choices[0].Message.Content, nil), nil
}

// Stream is not supported.
func (m *CompletionModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, ErrStreamingUnsupported
}

// errorBody returns the upstream error body byte for byte. openai-go leaves the
// body readable on apiErr.Response after decoding it.
func errorBody(apiErr *openai.Error) string {
	if apiErr.Response != nil && apiErr.Response.Body != nil {
		raw, err := io.ReadAll(apiErr.Response.Body)
		if err == nil && len(raw) > 0 {
			return string(raw)
		}
	}
	if raw := apiErr.RawJSON(); raw != "" {
		return raw
	}
	return apiErr.Error()
}

func toCompletionMessages(input []*schema.Message) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(input))
	for _, msg := range input {
		if msg == nil {
			continue
		}
		switch msg.Role {
		case schema.System:
			msgs = append(msgs, openai.SystemMessage(msg.Content))
		case schema.Assistant:
			msgs = append(msgs, openai.ChatCompletionMessageParamOfAssistant(msg.Content))
		default:
			msgs = append(msgs, openai.UserMessage(msg.Content))
		}
	}
	return msgs
}
