// Package gemini implements the insight oracle adapter on top of Google's
// Gemini API. The rest of the system consumes it as an opaque
// text-generation collaborator with a bounded retry contract.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"google.golang.org/genai"
)

// Generator is the text-generation oracle interface consumed by the core
// components. Implementations must be safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Failure shapes the core recognizes to produce user-appropriate fallback
// text. Any other failure is reported as-is.
var (
	ErrRateLimited = errors.New("gemini: rate limited")
	ErrUnavailable = errors.New("gemini: model unavailable")
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = time.Second
)

// NoKeyText is the user-facing text for AI operations attempted without a
// configured API key.
const NoKeyText = "Insight generation failed. Please ensure a valid Gemini API key is configured."

// Config holds the oracle client settings.
type Config struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxAttempts int
	BaseDelay   time.Duration
}

// Client is the genai-backed Generator.
type Client struct {
	genaiClient   *genai.Client
	log           *slog.Logger
	contentConfig *genai.GenerateContentConfig
	modelName     string
	maxAttempts   int
	baseDelay     time.Duration
}

// NewClient creates a Gemini oracle client. It fails only on missing API
// key or SDK initialization errors; request-time failures are handled by
// the retry contract in Generate.
func NewClient(ctx context.Context, cfg Config, log *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if log == nil {
		log = slog.Default()
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaultBaseDelay
	}

	logger := log.With("component", "gemini_client")
	logger.Info("Gemini client initialized", "model", cfg.Model)

	return &Client{
		genaiClient:   gi,
		log:           logger,
		contentConfig: &genai.GenerateContentConfig{Temperature: &cfg.Temperature},
		modelName:     cfg.Model,
		maxAttempts:   cfg.MaxAttempts,
		baseDelay:     cfg.BaseDelay,
	}, nil
}

// Generate sends the prompt to the model and returns the generated text,
// retrying per the oracle contract. Returned errors wrap ErrRateLimited or
// ErrUnavailable when the failure shape is recognized.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return generateWithRetries(ctx, c.log, c.maxAttempts, c.baseDelay, func(ctx context.Context) (string, error) {
		contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

		resp, err := c.genaiClient.Models.GenerateContent(ctx, c.modelName, contents, c.contentConfig)
		if err != nil {
			return "", classifyAPIError(err)
		}

		text := resp.Text()
		if text == "" {
			return "", fmt.Errorf("gemini returned empty content")
		}
		return text, nil
	})
}

// classifyAPIError maps genai API errors onto the two failure shapes the
// core recognizes.
func classifyAPIError(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429:
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		case 404, 503:
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	return err
}

// retryState is the explicit backoff state machine: attempt counter plus
// computed delay. Delays grow exponentially (base * 2^attempt) with up to
// one base-delay of random jitter added.
type retryState struct {
	attempt     int
	maxAttempts int
	baseDelay   time.Duration
}

// next reports whether another attempt is allowed and, if so, the delay to
// wait before it. The first attempt carries no delay.
func (r *retryState) next() (time.Duration, bool) {
	if r.attempt >= r.maxAttempts {
		return 0, false
	}
	var delay time.Duration
	if r.attempt > 0 {
		backoff := r.baseDelay << (r.attempt - 1)
		jitter := time.Duration(rand.Float64() * float64(r.baseDelay))
		delay = backoff + jitter
	}
	r.attempt++
	return delay, true
}

// generateWithRetries drives call through the retry state machine. The
// waiting period between attempts blocks only the calling goroutine and is
// cut short by context cancellation.
func generateWithRetries(ctx context.Context, log *slog.Logger, maxAttempts int, baseDelay time.Duration, call func(context.Context) (string, error)) (string, error) {
	state := retryState{maxAttempts: maxAttempts, baseDelay: baseDelay}

	var lastErr error
	for {
		delay, ok := state.next()
		if !ok {
			log.Error("oracle call failed after max attempts", "attempts", maxAttempts, "error", lastErr)
			return "", lastErr
		}

		if delay > 0 {
			log.Info("retrying oracle call", "attempt", state.attempt, "delay", delay)
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return "", ctx.Err()
			}
		}

		text, err := call(ctx)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", lastErr
		}
		log.Warn("oracle call failed", "attempt", state.attempt, "max_attempts", maxAttempts, "error", err)
	}
}

// FallbackText translates an oracle failure into user-facing text. It
// never returns an empty string for a non-nil error.
func FallbackText(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRateLimited):
		return "API rate limit exceeded. Please try again later."
	case errors.Is(err, ErrUnavailable):
		return "The AI model is currently unavailable. Please check your API configuration."
	default:
		return NoKeyText
	}
}
