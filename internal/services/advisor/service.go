// Package advisor answers investor questions and suggests products
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/Rhymond/go-money"

	"github.com/bobmcallan/gripinvest/internal/common"
	"github.com/bobmcallan/gripinvest/internal/interfaces"
	"github.com/bobmcallan/gripinvest/internal/models"
	"github.com/bobmcallan/gripinvest/internal/services/insight"
)

// Compile-time interface check
var _ interfaces.AdvisorService = (*Service)(nil)

const (
	// PortfolioPath is the page that gets the user's holdings added to the chat context.
	PortfolioPath = "/dashboard/portfolio"

	// MaxCandidates bounds the products offered to the generator.
	MaxCandidates = 5

	NoMatchSummary  = "No specific products match your profile right now, but check out our general listings!"
	FallbackReply   = "I'm having trouble answering right now. Please try again in a moment."
	chatComponent   = "advisor.chat"
	recoComponent   = "advisor.recommendations"
	fallbackPicks   = 3
	persona         = "You are Finley, a friendly and knowledgeable AI investment analyst from Grip Invest."
	displayCurrency = money.USD
)

// Service implements AdvisorService
type Service struct {
	storage  interfaces.StorageManager
	insights *insight.Delegator
	logger   *common.Logger
}

// NewService creates a new advisor service
func NewService(storage interfaces.StorageManager, insights *insight.Delegator, logger *common.Logger) *Service {
	return &Service{
		storage:  storage,
		insights: insights,
		logger:   logger,
	}
}

// Chat answers message in the context of the page the user is on.
func (s *Service) Chat(ctx context.Context, userID string, history []models.ChatMessage, message, path string) (*models.ChatReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, models.InvalidInput("Message is required")
	}

	contextInfo, err := s.chatContext(ctx, userID, path)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString(persona + "\n")
	sb.WriteString("Your tone is professional, helpful, and encouraging. Never give direct financial advice, ")
	sb.WriteString("but you can educate and provide insights based on the data provided.\n\n")
	sb.WriteString("CONTEXT: " + contextInfo + "\n\n")
	sb.WriteString("CONVERSATION HISTORY:\n")
	for _, turn := range history {
		fmt.Fprintf(&sb, "%s: %s\n", turn.Role, turn.Text)
	}
	sb.WriteString("\nUSER'S NEW MESSAGE:\n" + message + "\n\nFINLEY'S RESPONSE:\n")

	return &models.ChatReply{
		Reply: s.insights.Generate(ctx, chatComponent, sb.String(), FallbackReply),
	}, nil
}

func (s *Service) chatContext(ctx context.Context, userID, path string) (string, error) {
	info := fmt.Sprintf("The user is currently on the %q page.", path)
	if path != PortfolioPath {
		return info, nil
	}

	investments, err := s.storage.InvestmentStore().ListByUser(ctx, userID, "")
	if err != nil {
		return "", fmt.Errorf("failed to load portfolio for chat: %w", err)
	}
	if len(investments) == 0 {
		return info + "\n\nThe user has no investments yet.", nil
	}

	lines := make([]string, 0, len(investments))
	for _, inv := range investments {
		name := inv.ProductID
		if inv.Product != nil {
			name = inv.Product.Name
		}
		cents := inv.Amount.Round(2).Shift(2).IntPart()
		lines = append(lines, fmt.Sprintf("- %s: %s", name, money.New(cents, displayCurrency).Display()))
	}
	return info + "\n\nHere is a summary of the user's current portfolio:\n" + strings.Join(lines, "\n"), nil
}

// EligibleRisks maps a risk appetite to the product risk levels it may hold.
func EligibleRisks(appetite models.RiskLevel) []models.RiskLevel {
	switch appetite {
	case models.RiskHigh:
		return []models.RiskLevel{models.RiskHigh, models.RiskModerate}
	case models.RiskModerate:
		return []models.RiskLevel{models.RiskModerate, models.RiskLow}
	default:
		return []models.RiskLevel{models.RiskLow}
	}
}

type generatedPicks struct {
	Summary  string   `json:"summary"`
	Products []string `json:"products"`
}

// Recommendations shortlists products suited to a risk appetite.
func (s *Service) Recommendations(ctx context.Context, appetite models.RiskLevel) (*models.Recommendation, error) {
	if !appetite.Valid() {
		return nil, models.InvalidInput(fmt.Sprintf("Unknown risk appetite %q", appetite))
	}

	candidates, err := s.candidates(ctx, appetite)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return &models.Recommendation{Summary: NoMatchSummary, Products: []models.Product{}}, nil
	}

	fallback := &models.Recommendation{
		Summary:  fmt.Sprintf("Here are some top products matching your %s profile.", appetite),
		Products: candidates[:min(fallbackPicks, len(candidates))],
	}

	text, ok := s.insights.TryGenerate(ctx, recoComponent, recommendationPrompt(appetite, candidates))
	if !ok {
		return fallback, nil
	}

	var picks generatedPicks
	if err := json.Unmarshal([]byte(insight.StripCodeFence(text)), &picks); err != nil || strings.TrimSpace(picks.Summary) == "" {
		s.logger.Warn().Err(err).Str("risk_appetite", string(appetite)).Msg("Unparseable recommendations, using fallback")
		return fallback, nil
	}

	byName := make(map[string]models.Product, len(candidates))
	for _, p := range candidates {
		byName[strings.ToLower(p.Name)] = p
	}
	chosen := make([]models.Product, 0, len(picks.Products))
	seen := make(map[string]bool)
	for _, name := range picks.Products {
		key := strings.ToLower(strings.TrimSpace(name))
		if p, ok := byName[key]; ok && !seen[key] {
			chosen = append(chosen, p)
			seen[key] = true
		}
	}
	if len(chosen) == 0 {
		s.logger.Warn().Str("risk_appetite", string(appetite)).Msg("Generated recommendations named no known products, using fallback")
		return fallback, nil
	}

	return &models.Recommendation{Summary: strings.TrimSpace(picks.Summary), Products: chosen}, nil
}

// candidates returns up to MaxCandidates eligible products, highest yield first.
func (s *Service) candidates(ctx context.Context, appetite models.RiskLevel) ([]models.Product, error) {
	products, err := s.storage.ProductStore().List(ctx, models.ProductFilter{RiskLevels: EligibleRisks(appetite)})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].AnnualYield.GreaterThan(products[j].AnnualYield)
	})
	if len(products) > MaxCandidates {
		products = products[:MaxCandidates]
	}

	out := make([]models.Product, len(products))
	for i, p := range products {
		out[i] = *p
	}
	return out, nil
}

func recommendationPrompt(appetite models.RiskLevel, candidates []models.Product) string {
	lines := make([]string, len(candidates))
	for i, p := range candidates {
		lines[i] = fmt.Sprintf("- %s (Yield: %s%%, Type: %s, Risk: %s)", p.Name, p.AnnualYield.String(), p.InvestmentType, p.RiskLevel)
	}
	return fmt.Sprintf(`A user has a %q risk appetite. Based on the following available products, provide a short, encouraging summary (1 sentence) and then list the top 2-3 most suitable products for them.
Available Products:
%s

Format the output as a JSON object with two keys: "summary" (string) and "products" (an array of product names as strings). Example: {"summary": "...", "products": ["Product A", "Product B"]}`,
		appetite, strings.Join(lines, "\n"))
}
