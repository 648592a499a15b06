// Package llm is the boundary to the text-generation collaborator.
// Callers depend only on Generator; its timeout and rate policy live here.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"

	"github.com/wonny/analyst/pkg/config"
	"github.com/wonny/analyst/pkg/logger"
)

// ErrNotConfigured is returned when no API key is set
var ErrNotConfigured = errors.New("llm: api key not configured")

// ErrEmptyResponse is returned when the collaborator produced no text
var ErrEmptyResponse = errors.New("llm: empty response")

// Generator turns a prompt into free-form text
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Func adapts a plain function to Generator
type Func func(ctx context.Context, prompt string) (string, error)

// Generate calls f
func (f Func) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

type messageCreator interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// ClaudeGenerator calls the Anthropic Messages API
type ClaudeGenerator struct {
	messages  messageCreator
	model     string
	maxTokens int
	timeout   time.Duration
	limiter   *rate.Limiter
	logger    *logger.Logger
}

// NewClaudeGenerator creates a generator from LLM config. The SDK's
// automatic retries are disabled: a failed call fails the job for the day.
// Extra options (base URL, HTTP client) are applied after the defaults.
func NewClaudeGenerator(cfg config.LLMConfig, log *logger.Logger, opts ...option.RequestOption) (*ClaudeGenerator, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	clientOpts := append([]option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}, opts...)
	client := anthropic.NewClient(clientOpts...)
	return newClaudeGenerator(&client.Messages, cfg, log), nil
}

func newClaudeGenerator(messages messageCreator, cfg config.LLMConfig, log *logger.Logger) *ClaudeGenerator {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	perMinute := cfg.RatePerMinute
	if perMinute <= 0 {
		perMinute = 10
	}

	return &ClaudeGenerator{
		messages:  messages,
		model:     cfg.Model,
		maxTokens: maxTokens,
		timeout:   cfg.Timeout,
		limiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
		logger:    log.Component("llm"),
	}
}

// Generate sends prompt as a single user message and joins the text blocks
func (g *ClaudeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("llm rate limit wait: %w", err)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: int64(g.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("llm generate: %w", err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(out.String()) == "" {
		return "", ErrEmptyResponse
	}

	g.logger.WithFields(map[string]interface{}{
		"prompt_chars":   len(prompt),
		"response_chars": out.Len(),
		"duration_ms":    time.Since(start).Milliseconds(),
	}).Debug("Generation completed")

	return out.String(), nil
}
