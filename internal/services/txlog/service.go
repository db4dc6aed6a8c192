// Package txlog records the per-request audit trail and summarizes recent failures.
package txlog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/gripinvest/internal/common"
	"github.com/bobmcallan/gripinvest/internal/interfaces"
	"github.com/bobmcallan/gripinvest/internal/models"
	"github.com/bobmcallan/gripinvest/internal/services/insight"
)

// Compile-time interface check
var _ interfaces.TransactionLogService = (*Service)(nil)

const (
	// ListLimit caps the entries returned to a user.
	ListLimit = 200

	// ErrorWindow is how far back failures are summarized.
	ErrorWindow = 24 * time.Hour

	maxErrorSnippet  = 120
	insightComponent = "txlog"
)

// Service implements TransactionLogService
type Service struct {
	storage  interfaces.StorageManager
	insights *insight.Delegator
	now      func() time.Time
	logger   *common.Logger
}

// NewService creates a new transaction log service. A nil clock uses time.Now.
func NewService(storage interfaces.StorageManager, insights *insight.Delegator, clock func() time.Time, logger *common.Logger) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		storage:  storage,
		insights: insights,
		now:      clock,
		logger:   logger,
	}
}

// Record appends an audit entry. Failures are logged and never reach the request.
func (s *Service) Record(ctx context.Context, entry *models.TransactionLog) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	if err := s.storage.TransactionLogStore().Append(ctx, entry); err != nil {
		s.logger.Warn().
			Err(err).
			Str("method", entry.Method).
			Str("endpoint", entry.Endpoint).
			Int("status", entry.StatusCode).
			Msg("Failed to record transaction log")
	}
}

// GetTransactionLogs returns the user's newest entries and a summary of their
// failures in the trailing ErrorWindow.
func (s *Service) GetTransactionLogs(ctx context.Context, userID string) (*models.TransactionLogReport, error) {
	entries, err := s.storage.TransactionLogStore().ListByUser(ctx, userID, ListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transaction logs: %w", err)
	}

	logs := make([]models.TransactionLog, 0, len(entries))
	var recentErrors []models.TransactionLog
	cutoff := s.now().Add(-ErrorWindow)
	for _, e := range entries {
		logs = append(logs, *e)
		if e.IsError() && e.CreatedAt.After(cutoff) {
			recentErrors = append(recentErrors, *e)
		}
	}

	return &models.TransactionLogReport{
		Logs:           logs,
		AIErrorSummary: s.summarize(ctx, recentErrors),
	}, nil
}

func (s *Service) summarize(ctx context.Context, errs []models.TransactionLog) models.ErrorSummary {
	if len(errs) == 0 {
		return models.ErrorSummary{Text: models.ErrorSummaryNone, Status: models.SummaryStatusSuccess}
	}

	text := s.insights.Generate(ctx, insightComponent, errorPrompt(errs), models.ErrorSummaryFailure)
	return models.ErrorSummary{Text: text, Status: models.SummaryStatusWarning}
}

func errorPrompt(errs []models.TransactionLog) string {
	lines := make([]string, 0, len(errs))
	for _, e := range errs {
		lines = append(lines, fmt.Sprintf("- Endpoint: %s %s, Status: %d, Error: %s",
			e.Method, e.Endpoint, e.StatusCode, truncate(e.ErrorMessage, maxErrorSnippet)))
	}

	return fmt.Sprintf(`Analyze the following API error logs from an investment platform within the last 24 hours.
Logs:
%s
Provide a brief, human-readable summary (1-2 sentences) of the most important or frequent issues.`, strings.Join(lines, "\n"))
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
