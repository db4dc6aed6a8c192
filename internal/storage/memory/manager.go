// Package memory provides an in-process StorageManager. It backs local
// development without a database and the service test suites.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/gripinvest/internal/interfaces"
	"github.com/bobmcallan/gripinvest/internal/models"
)

// Manager implements interfaces.StorageManager with maps guarded by one mutex.
type Manager struct {
	mu          sync.RWMutex
	products    map[string]models.Product
	investments map[string]models.Investment
	users       map[string]models.User
	logs        []models.TransactionLog

	productStore    *ProductStore
	investmentStore *InvestmentStore
	userStore       *UserStore
	logStore        *TransactionLogStore
}

// NewManager creates an empty in-memory store.
func NewManager() *Manager {
	m := &Manager{
		products:    make(map[string]models.Product),
		investments: make(map[string]models.Investment),
		users:       make(map[string]models.User),
	}
	m.productStore = &ProductStore{m: m}
	m.investmentStore = &InvestmentStore{m: m}
	m.userStore = &UserStore{m: m}
	m.logStore = &TransactionLogStore{m: m}
	return m
}

func (m *Manager) ProductStore() interfaces.ProductStore {
	return m.productStore
}

func (m *Manager) InvestmentStore() interfaces.InvestmentStore {
	return m.investmentStore
}

func (m *Manager) UserStore() interfaces.UserStore {
	return m.userStore
}

func (m *Manager) TransactionLogStore() interfaces.TransactionLogStore {
	return m.logStore
}

func (m *Manager) Close() error {
	return nil
}

// ProductStore is the in-memory product table.
type ProductStore struct {
	m *Manager
}

func (s *ProductStore) Create(_ context.Context, product *models.Product) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if _, exists := s.m.products[product.ID]; exists {
		return fmt.Errorf("product %s already exists", product.ID)
	}
	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	s.m.products[product.ID] = cloneProduct(*product)
	return nil
}

func (s *ProductStore) Get(_ context.Context, id string) (*models.Product, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	p, ok := s.m.products[id]
	if !ok {
		return nil, nil
	}
	out := cloneProduct(p)
	return &out, nil
}

func (s *ProductStore) List(_ context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	out := make([]*models.Product, 0, len(s.m.products))
	for _, p := range s.m.products {
		if !matchesFilter(p, filter) {
			continue
		}
		c := cloneProduct(p)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *ProductStore) Update(_ context.Context, product *models.Product) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	existing, ok := s.m.products[product.ID]
	if !ok {
		return fmt.Errorf("product %s not found", product.ID)
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()
	s.m.products[product.ID] = cloneProduct(*product)
	return nil
}

func (s *ProductStore) Delete(_ context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.products, id)
	return nil
}

// InvestmentStore is the in-memory investment table.
type InvestmentStore struct {
	m *Manager
}

func (s *InvestmentStore) Create(_ context.Context, inv *models.Investment) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	if _, exists := s.m.investments[inv.ID]; exists {
		return fmt.Errorf("investment %s already exists", inv.ID)
	}
	stored := *inv
	stored.Product = nil
	s.m.investments[inv.ID] = stored
	return nil
}

func (s *InvestmentStore) GetForUser(_ context.Context, id, userID string) (*models.Investment, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	inv, ok := s.m.investments[id]
	if !ok || inv.UserID != userID {
		return nil, nil
	}
	return s.m.joined(inv), nil
}

func (s *InvestmentStore) Get(_ context.Context, id string) (*models.Investment, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	inv, ok := s.m.investments[id]
	if !ok {
		return nil, nil
	}
	return s.m.joined(inv), nil
}

func (s *InvestmentStore) ListByUser(_ context.Context, userID string, status models.InvestmentStatus) ([]*models.Investment, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	var out []*models.Investment
	for _, inv := range s.m.investments {
		if inv.UserID != userID || (status != "" && inv.Status != status) {
			continue
		}
		out = append(out, s.m.joined(inv))
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *InvestmentStore) CountByProduct(_ context.Context, productID string) (int, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	n := 0
	for _, inv := range s.m.investments {
		if inv.ProductID == productID {
			n++
		}
	}
	return n, nil
}

func (s *InvestmentStore) TransitionStatus(_ context.Context, id string, from, to models.InvestmentStatus) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	inv, ok := s.m.investments[id]
	if !ok || inv.Status != from {
		return false, nil
	}
	inv.Status = to
	s.m.investments[id] = inv
	return true, nil
}

func (s *InvestmentStore) ListDue(_ context.Context, asOf time.Time) ([]*models.Investment, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	var out []*models.Investment
	for _, inv := range s.m.investments {
		if inv.Status == models.InvestmentStatusActive && !inv.MaturityDate.After(asOf) {
			out = append(out, s.m.joined(inv))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// UserStore is the in-memory profile table.
type UserStore struct {
	m *Manager
}

func (s *UserStore) Get(_ context.Context, id string) (*models.User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	u, ok := s.m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *UserStore) Save(_ context.Context, user *models.User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if user.ID == "" {
		return fmt.Errorf("user id is required")
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	s.m.users[user.ID] = *user
	return nil
}

// TransactionLogStore is the in-memory audit trail.
type TransactionLogStore struct {
	m *Manager
}

func (s *TransactionLogStore) Append(_ context.Context, entry *models.TransactionLog) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	s.m.logs = append(s.m.logs, *entry)
	return nil
}

func (s *TransactionLogStore) ListByUser(_ context.Context, userID string, limit int) ([]*models.TransactionLog, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	var out []*models.TransactionLog
	for i := range s.m.logs {
		if s.m.logs[i].UserID == userID {
			entry := s.m.logs[i]
			out = append(out, &entry)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// joined returns a copy of inv with its product attached. Caller holds the lock.
func (m *Manager) joined(inv models.Investment) *models.Investment {
	if p, ok := m.products[inv.ProductID]; ok {
		c := cloneProduct(p)
		inv.Product = &c
	}
	return &inv
}

func sortNewestFirst(list []*models.Investment) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].InvestedAt.Equal(list[j].InvestedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].InvestedAt.After(list[j].InvestedAt)
	})
}

func matchesFilter(p models.Product, f models.ProductFilter) bool {
	if f.InvestmentType != "" && p.InvestmentType != f.InvestmentType {
		return false
	}
	if len(f.RiskLevels) == 0 {
		return true
	}
	for _, r := range f.RiskLevels {
		if p.RiskLevel == r {
			return true
		}
	}
	return false
}

func cloneProduct(p models.Product) models.Product {
	if p.MaxInvestment != nil {
		v := *p.MaxInvestment
		p.MaxInvestment = &v
	}
	return p
}

// Compile-time checks
var (
	_ interfaces.StorageManager      = (*Manager)(nil)
	_ interfaces.ProductStore        = (*ProductStore)(nil)
	_ interfaces.InvestmentStore     = (*InvestmentStore)(nil)
	_ interfaces.UserStore           = (*UserStore)(nil)
	_ interfaces.TransactionLogStore = (*TransactionLogStore)(nil)
)
