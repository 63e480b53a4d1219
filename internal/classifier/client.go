package classifier

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/voicebudget/voice-ledger/pkg/logger"
)

// Completer sends a single-turn prompt to a chat model and returns its reply text
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config represents the configuration for the completion endpoint
type Config struct {
	Provider       string  `toml:"provider"`
	BaseURL        string  `toml:"base_url"`
	Model          string  `toml:"model"`
	Temperature    float64 `toml:"temperature"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	APIKey         string  `toml:"-"` // COMPLETION_API_KEY
}

// ChatClient talks to an OpenAI-compatible chat completions endpoint such as OpenRouter
type ChatClient struct {
	client   openai.Client
	config   Config
	provider string
	logger   *logger.Logger
}

// NewChatClient creates a chat client. A missing API key is reported on each call as AuthError.
func NewChatClient(cfg Config, httpClient *http.Client, log *logger.Logger) *ChatClient {
	provider := cfg.Provider
	if provider == "" {
		provider = "completion"
	}
	if cfg.APIKey == "" {
		log.Warn("Completion API key is empty - voice uploads will fail", logger.String("provider", provider))
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	if cfg.TimeoutSeconds > 0 {
		opts = append(opts, option.WithRequestTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second))
	}

	return &ChatClient{
		client:   openai.NewClient(opts...),
		config:   cfg,
		provider: provider,
		logger:   log.Named("chat-client"),
	}
}

// Complete returns the first choice's message content
func (c *ChatClient) Complete(ctx context.Context, prompt string) (string, error) {
	if c.config.APIKey == "" {
		return "", &AuthError{Provider: c.provider}
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.config.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if c.config.Temperature > 0 {
		params.Temperature = openai.Float(c.config.Temperature)
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &UpstreamError{
				StatusCode: apiErr.StatusCode,
				Body:       string(apiErr.DumpResponse(true)),
				Err:        err,
			}
		}
		return "", &UpstreamError{Err: err}
	}

	if resp == nil || len(resp.Choices) == 0 {
		return "", &UpstreamError{Body: "no choices in response"}
	}

	message := resp.Choices[0].Message
	if !message.JSON.Content.Valid() {
		return "", &UpstreamError{Body: "first choice has no message content"}
	}
	reply := message.Content
	c.logger.Debug("Completion received",
		logger.String("model", c.config.Model),
		logger.Int("reply_chars", len(reply)),
		logger.Duration("elapsed", time.Since(start)))

	return reply, nil
}
