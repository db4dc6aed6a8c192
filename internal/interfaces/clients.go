// Package interfaces defines service contracts for gripinvest
package interfaces

import (
	"context"
)

// TextGenerator produces free text from a prompt. Implementations may fail or
// time out; callers treat every failure as recoverable.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
