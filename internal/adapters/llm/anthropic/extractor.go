// Package anthropic provides the Claude-backed field extractor for the
// enrich pipeline
package anthropic

import (
	"context"
	"errors"
	"net"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"newshound/internal/core/enrichment"
	perr "newshound/internal/platform/errors"
	"newshound/internal/platform/logger"
	"newshound/internal/services/enrich/domain"
)

const (
	defaultModel     = "claude-3-5-haiku-latest"
	defaultMaxTokens = 2048
	defaultMaxRetry  = 3
	defaultRetryBase = 1 * time.Second
)

// Options configures the Extractor
type Options struct {
	APIKey    string
	Model     string
	MaxTokens int64

	// Timeout bounds a single API call, zero leaves the SDK default
	Timeout time.Duration

	// overload and 5xx retries, on top of whatever the SDK does itself
	MaxRetries int
	RetryBase  time.Duration
}

// Extractor implements domain.ExtractorPort over the Anthropic Messages API.
// One article = one call, all nine fields extracted at once
type Extractor struct {
	opts Options
	log  logger.Logger

	// call and sleep are seams for tests
	call  func(ctx context.Context, params sdk.MessageNewParams) (*sdk.Message, error)
	sleep func(time.Duration)
}

// New creates a new Extractor with sane defaults
func New(o Options) *Extractor {
	if o.Model == "" {
		o.Model = defaultModel
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = defaultMaxTokens
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	// retries live in callWithRetry, the SDK must not stack its own
	copts := []option.RequestOption{option.WithAPIKey(o.APIKey), option.WithMaxRetries(0)}
	if o.Timeout > 0 {
		copts = append(copts, option.WithRequestTimeout(o.Timeout))
	}
	client := sdk.NewClient(copts...)
	return &Extractor{
		opts: o,
		log:  *logger.Named("anthropic"),
		call: func(ctx context.Context, params sdk.MessageNewParams) (*sdk.Message, error) {
			return client.Messages.New(ctx, params)
		},
		sleep: time.Sleep,
	}
}

// ExtractFields implements domain.ExtractorPort. The returned usage covers
// the successful call; failed attempts return no usage to price
func (e *Extractor) ExtractFields(
	ctx context.Context, a enrichment.Article,
) (enrichment.Extractions, domain.TokenUsage, error) {
	prompt := enrichment.ExtractionPrompt(a)

	message, err := e.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, domain.TokenUsage{}, err
	}
	usage := domain.TokenUsage{
		InputTokens:  message.Usage.InputTokens,
		OutputTokens: message.Usage.OutputTokens,
	}

	if len(message.Content) == 0 || message.Content[0].Type != "text" {
		return nil, usage, perr.Internalf("anthropic response has no text block")
	}

	out, err := enrichment.ParseExtractionResponse(message.Content[0].Text, a.URL)
	if err != nil {
		return nil, usage, perr.Wrapf(err, perr.ErrorCodeJSON, "anthropic extraction decode failed")
	}
	return out, usage, nil
}

func (e *Extractor) callWithRetry(ctx context.Context, prompt string) (*sdk.Message, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(e.opts.Model),
		MaxTokens: e.opts.MaxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	}

	var lastErr error
	for attempt := 0; attempt <= e.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			back := e.backoff(attempt - 1)
			e.log.Warn().Dur("retry_in", back).Int("attempt", attempt).Msg("anthropic retrying")
			e.sleep(back)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
		}

		start := time.Now()
		message, err := e.call(ctx, params)
		if err == nil {
			e.log.Debug().
				Str("model", e.opts.Model).
				Int64("input_tokens", message.Usage.InputTokens).
				Int64("output_tokens", message.Usage.OutputTokens).
				Dur("latency", time.Since(start)).
				Int("attempt", attempt).
				Msg("anthropic message complete")
			return message, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !isRetryable(err) {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "anthropic call failed")
		}
	}
	return nil, perr.Wrapf(lastErr, perr.ErrorCodeUnavailable,
		"anthropic call failed after %d attempts", e.opts.MaxRetries+1)
}

func (e *Extractor) backoff(attempt int) time.Duration {
	d := e.opts.RetryBase
	ms := int64(d / time.Millisecond)
	ms = ms << uint(attempt)
	max := int64(30 * time.Second / time.Millisecond)
	if ms > max {
		ms = max
	}
	return time.Duration(ms) * time.Millisecond
}

// isRetryable treats rate limits and server errors as transient. Context
// errors are terminal, the merge node turns them into a merge failure
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	return false
}

var _ domain.ExtractorPort = (*Extractor)(nil)
