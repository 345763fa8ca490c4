// Package gemini wraps a single multimodal generate call to the Gemini API
// behind a bounded timeout and a uniform Outcome classification.
package gemini

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"server/internal/infra"
)

const defaultModel = "gemini-2.5-flash-image-preview"
const defaultTimeout = 45 * time.Second

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	Logger  *infra.Logger
}

// Client issues one generateContent call per Generate invocation. It keeps
// no per-request state and performs no retries; retry policy belongs to the
// caller.
type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *infra.Logger
}

// permissive safety thresholds: the service composits clothing photos and
// relies on the model's own hard blocks only.
var safetySettings = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
}

// NewClient constructs a Gemini client. The API key is mandatory; model and
// timeout fall back to defaults when unset.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("gemini: API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}

	return &Client{client: client, model: model, timeout: timeout, logger: logger}, nil
}

// Model returns the configured Gemini model identifier.
func (c *Client) Model() string {
	return c.model
}

// Generate sends the prompt plus inline image to the model and classifies
// whatever comes back. It never returns an error; every failure mode maps to
// an Outcome kind. The call is bounded by the configured timeout; once the
// deadline fires the in-flight request is abandoned to its context.
func (c *Client) Generate(ctx context.Context, prompt string, image []byte, mediaType string) Outcome {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: prompt},
			{InlineData: &genai.Blob{MIMEType: mediaType, Data: image}},
		},
	}}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
		SafetySettings:     safetySettings,
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			c.logger.Warn().
				Str("model", c.model).
				Dur("elapsed", elapsed).
				Msg("gemini: generate call timed out")
			return Outcome{Kind: KindTimeout, Elapsed: elapsed}
		}
		out := classifyError(err)
		out.Elapsed = elapsed
		c.logger.Error().
			Str("model", c.model).
			Str("tag", string(out.ErrTag)).
			Str("detail", out.Err).
			Msg("gemini: generate call failed")
		return out
	}

	out := classifyResponse(resp)
	out.Elapsed = elapsed
	switch out.Kind {
	case KindImage:
		if out.Caption != "" {
			// Not fatal, but the model usually returns the image alone.
			c.logger.Debug().
				Str("model", c.model).
				Msg("gemini: response carried caption text alongside the image")
		}
	case KindBlocked:
		c.logger.Warn().
			Str("model", c.model).
			Str("reason", out.BlockReason).
			Str("detail", out.BlockDetail).
			Msg("gemini: generation blocked")
	case KindEmpty:
		c.logger.Warn().
			Str("model", c.model).
			Str("caption", out.Caption).
			Msg("gemini: response contained no image part")
	}
	return out
}
