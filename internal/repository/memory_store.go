package repository

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/user-orders-service/internal/domain"
	apperrors "github.com/spec-kit/user-orders-service/pkg/util/errorutil"
)

// memoryUserStore is an in-memory UserStore with the same observable
// semantics as the Mongo-backed one: insertion-order listing, projection
// field sets, set-semantics order appends, soft-delete that keeps records
// visible, exact decimal totals. It backs the test suites.
type memoryUserStore struct {
	mu    sync.RWMutex
	users []*domain.User
}

// NewMemoryUserStore returns an empty in-memory store.
func NewMemoryUserStore() UserStore {
	return &memoryUserStore{}
}

func (s *memoryUserStore) Exists(_ context.Context, userID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(userID) != nil, nil
}

func (s *memoryUserStore) UsernameTaken(_ context.Context, username string, excludeUserID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username && u.UserID != excludeUserID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryUserStore) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.find(user.UserID) != nil {
		return nil, apperrors.NewDuplicate("User already exists", map[string]any{"userId": user.UserID})
	}
	for _, u := range s.users {
		if u.Username == user.Username {
			return nil, apperrors.NewDuplicate("User already exists", map[string]any{"username": user.Username})
		}
	}

	stored := copyUser(user)
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if stored.Orders == nil {
		stored.Orders = []domain.Order{}
	}
	s.users = append(s.users, stored)
	return copyUser(stored), nil
}

func (s *memoryUserStore) ListAll(_ context.Context) ([]domain.UserSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]domain.UserSummary, 0, len(s.users))
	for _, u := range s.users {
		summaries = append(summaries, domain.UserSummary{
			Username: u.Username,
			FullName: u.FullName,
			Age:      u.Age,
			Email:    u.Email,
			Address:  u.Address,
		})
	}
	return summaries, nil
}

func (s *memoryUserStore) GetByID(_ context.Context, userID int64) (*domain.UserDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u := s.find(userID)
	if u == nil {
		return nil, apperrors.NewNotFound("User", map[string]any{"userId": userID})
	}
	return &domain.UserDetail{
		UserID:   u.UserID,
		Username: u.Username,
		FullName: u.FullName,
		Age:      u.Age,
		Email:    u.Email,
		Address:  u.Address,
	}, nil
}

func (s *memoryUserStore) UpdateByID(_ context.Context, userID int64, patch domain.UserPatch) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.find(userID)
	if u == nil {
		return nil, apperrors.NewNotFound("User", map[string]any{"userId": userID})
	}

	if patch.UserID != nil {
		u.UserID = *patch.UserID
	}
	if patch.Username != nil {
		u.Username = *patch.Username
	}
	if patch.FullName != nil {
		u.FullName = *patch.FullName
	}
	if patch.Age != nil {
		u.Age = *patch.Age
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Password != nil {
		u.Password = *patch.Password
	}
	if patch.Address != nil {
		u.Address = *patch.Address
	}
	u.UpdatedAt = time.Now().UTC()
	return copyUser(u), nil
}

func (s *memoryUserStore) SoftDelete(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.find(userID)
	if u == nil {
		return apperrors.NewNotFound("User", map[string]any{"userId": userID})
	}
	u.IsDeleted = true
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *memoryUserStore) AppendOrder(_ context.Context, userID int64, order domain.Order) (domain.OrderAppendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.find(userID)
	if u == nil {
		return domain.OrderAppendResult{Acknowledged: true}, nil
	}
	for _, existing := range u.Orders {
		if sameOrder(existing, order) {
			return domain.OrderAppendResult{Acknowledged: true, MatchedCount: 1}, nil
		}
	}
	u.Orders = append(u.Orders, order)
	u.UpdatedAt = time.Now().UTC()
	return domain.OrderAppendResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

func (s *memoryUserStore) OrdersByUserID(_ context.Context, userID int64) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u := s.find(userID)
	if u == nil {
		return []domain.Order{}, nil
	}
	return append([]domain.Order{}, u.Orders...), nil
}

func (s *memoryUserStore) OrderTotalByUserID(_ context.Context, userID int64) (*decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u := s.find(userID)
	if u == nil || len(u.Orders) == 0 {
		return nil, nil
	}
	total := decimal.Zero
	for _, o := range u.Orders {
		total = total.Add(o.Price.Mul(decimal.NewFromInt(int64(o.Quantity))))
	}
	return &total, nil
}

// find must be called with the lock held.
func (s *memoryUserStore) find(userID int64) *domain.User {
	for _, u := range s.users {
		if u.UserID == userID {
			return u
		}
	}
	return nil
}

func sameOrder(a, b domain.Order) bool {
	return a.ProductName == b.ProductName && a.Quantity == b.Quantity && a.Price.Equal(b.Price)
}

func copyUser(u *domain.User) *domain.User {
	cp := *u
	cp.Orders = append([]domain.Order{}, u.Orders...)
	return &cp
}
