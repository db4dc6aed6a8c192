// Package insight bounds and absorbs calls to the text generation collaborator
package insight

import (
	"context"
	"strings"
	"time"

	"github.com/bobmcallan/gripinvest/internal/common"
	"github.com/bobmcallan/gripinvest/internal/interfaces"
)

// DefaultTimeout bounds a single generation call.
const DefaultTimeout = 15 * time.Second

// Delegator wraps a TextGenerator so that callers always get a string back.
// A nil generator is valid and always yields the fallback.
type Delegator struct {
	generator interfaces.TextGenerator
	timeout   time.Duration
	logger    *common.Logger
}

// NewDelegator creates a delegator. A non-positive timeout uses DefaultTimeout.
func NewDelegator(generator interfaces.TextGenerator, timeout time.Duration, logger *common.Logger) *Delegator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Delegator{
		generator: generator,
		timeout:   timeout,
		logger:    logger,
	}
}

// Enabled reports whether a generator is configured.
func (d *Delegator) Enabled() bool {
	return d != nil && d.generator != nil
}

// Generate runs prompt through the generator. Any failure, timeout or empty
// answer returns fallback and is logged against component.
func (d *Delegator) Generate(ctx context.Context, component, prompt, fallback string) string {
	text, ok := d.TryGenerate(ctx, component, prompt)
	if !ok {
		return fallback
	}
	return text
}

// TryGenerate is Generate for callers that post-process the answer and need
// to know whether the fallback path was taken.
func (d *Delegator) TryGenerate(ctx context.Context, component, prompt string) (string, bool) {
	if !d.Enabled() {
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	text, err := d.generator.GenerateContent(ctx, prompt)
	if err != nil {
		d.logger.Warn().
			Err(err).
			Str("component", component).
			Dur("elapsed", time.Since(start)).
			Msg("Text generation failed, using fallback")
		return "", false
	}

	text = strings.TrimSpace(text)
	if text == "" {
		d.logger.Warn().Str("component", component).Msg("Text generation returned no content, using fallback")
		return "", false
	}
	return text, true
}

// StripCodeFence removes a surrounding ``` or ```json fence from generated text.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
