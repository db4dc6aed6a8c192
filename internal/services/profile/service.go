// Package profile manages investor profiles
package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/bobmcallan/gripinvest/internal/common"
	"github.com/bobmcallan/gripinvest/internal/interfaces"
	"github.com/bobmcallan/gripinvest/internal/models"
)

// Compile-time interface check
var _ interfaces.ProfileService = (*Service)(nil)

// DefaultRiskAppetite applies when a profile is created without one.
const DefaultRiskAppetite = models.RiskModerate

// Service implements ProfileService
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
}

// NewService creates a new profile service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// GetProfile returns the caller's profile.
func (s *Service) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.storage.UserStore().Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, models.NotFound("User not found")
	}
	return user, nil
}

// CreateProfile stores a new profile. Role and risk appetite get defaults.
func (s *Service) CreateProfile(ctx context.Context, user models.User) (*models.User, error) {
	user.FirstName = strings.TrimSpace(user.FirstName)
	user.LastName = strings.TrimSpace(user.LastName)
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	if user.ID == "" {
		return nil, models.InvalidInput("User id is required")
	}
	if user.FirstName == "" {
		return nil, models.InvalidInput("First name is required")
	}
	if !strings.Contains(user.Email, "@") {
		return nil, models.InvalidInput("A valid email is required")
	}
	if user.RiskAppetite == "" {
		user.RiskAppetite = DefaultRiskAppetite
	}
	if !user.RiskAppetite.Valid() {
		return nil, models.InvalidInput(fmt.Sprintf("Unknown risk appetite %q", user.RiskAppetite))
	}
	if user.Role != models.RoleAdmin {
		user.Role = models.RoleUser
	}

	existing, err := s.storage.UserStore().Get(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if existing != nil {
		return nil, models.InvalidState("Profile already exists")
	}

	if err := s.storage.UserStore().Save(ctx, &user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("Profile created")
	return &user, nil
}

// UpdateProfile changes names and risk appetite. Email and role are not editable.
func (s *Service) UpdateProfile(ctx context.Context, userID string, patch models.UserPatch) (*models.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.FirstName != nil {
		name := strings.TrimSpace(*patch.FirstName)
		if name == "" {
			return nil, models.InvalidInput("First name cannot be empty")
		}
		user.FirstName = name
	}
	if patch.LastName != nil {
		user.LastName = strings.TrimSpace(*patch.LastName)
	}
	if patch.RiskAppetite != nil {
		if !patch.RiskAppetite.Valid() {
			return nil, models.InvalidInput(fmt.Sprintf("Unknown risk appetite %q", *patch.RiskAppetite))
		}
		user.RiskAppetite = *patch.RiskAppetite
	}

	if err := s.storage.UserStore().Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Msg("Profile updated")
	return user, nil
}
