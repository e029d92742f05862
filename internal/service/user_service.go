package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/user-orders-service/internal/auth"
	"github.com/spec-kit/user-orders-service/internal/config"
	"github.com/spec-kit/user-orders-service/internal/domain"
	"github.com/spec-kit/user-orders-service/internal/events"
	"github.com/spec-kit/user-orders-service/internal/repository"
	apperrors "github.com/spec-kit/user-orders-service/pkg/util/errorutil"
)

// UserService coordinates user and order workflows on top of the store.
type UserService struct {
	store      repository.UserStore
	dispatcher events.Dispatcher
	bcryptCost int
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	Store      repository.UserStore
	Dispatcher events.Dispatcher
}

// RegisterInput describes the payload for a new user.
type RegisterInput struct {
	UserID   int64
	Username string
	FullName domain.FullName
	Age      int
	Email    string
	Password string
	Address  domain.Address
}

// NewUserService builds the service.
func NewUserService(cfg config.Config, deps UserDependencies) *UserService {
	return &UserService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Hash.BcryptCost,
	}
}

// Register hashes the password and persists a new user. A userId collision
// surfaces as a duplicate-identifier failure.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		UserID:   input.UserID,
		Username: input.Username,
		FullName: input.FullName,
		Age:      input.Age,
		Email:    input.Email,
		Password: hash,
		Address:  input.Address,
	}
	created, err := s.store.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventUserRegistered, created.UserID, events.UserRegisteredPayload{
		Username: created.Username,
		Email:    created.Email,
	})
	return created, nil
}

// List returns the whitelist projection of every stored user.
func (s *UserService) List(ctx context.Context) ([]domain.UserSummary, error) {
	return s.store.ListAll(ctx)
}

// Get returns the detail projection for one user.
func (s *UserService) Get(ctx context.Context, userID int64) (*domain.UserDetail, error) {
	return s.store.GetByID(ctx, userID)
}

// Change applies a partial update. When the patch moves userId or username,
// the new identifier must not belong to another record. The uniqueness check
// and the write are two separate round-trips: a concurrent writer can slip
// between them, with the unique indexes as the only backstop.
func (s *UserService) Change(ctx context.Context, userID int64, patch domain.UserPatch) (*domain.User, error) {
	exists, err := s.store.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NewNotFound("User", map[string]any{"userId": userID})
	}

	if patch.UserID != nil && *patch.UserID != userID {
		taken, err := s.store.Exists(ctx, *patch.UserID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperrors.NewDuplicate(
				"User already exists with the provided userId. Please change userId",
				map[string]any{"userId": *patch.UserID},
			)
		}
	}
	if patch.Username != nil {
		taken, err := s.store.UsernameTaken(ctx, *patch.Username, userID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperrors.NewDuplicate(
				"User already exists with the provided username. Please change username",
				map[string]any{"username": *patch.Username},
			)
		}
	}

	if patch.Password != nil {
		hash, err := auth.HashPassword(*patch.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		patch.Password = &hash
	}

	updated, err := s.store.UpdateByID(ctx, userID, patch)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventUserUpdated, updated.UserID, events.UserUpdatedPayload{
		ChangedFields: patchFieldNames(patch),
	})
	return updated, nil
}

// Delete marks the user as deleted. The record stays queryable by userId.
func (s *UserService) Delete(ctx context.Context, userID int64) error {
	if err := s.store.SoftDelete(ctx, userID); err != nil {
		return err
	}
	s.publish(ctx, events.EventUserDeleted, userID, events.UserDeletedPayload{SoftDeleted: true})
	return nil
}

// PlaceOrder appends an order to an existing user. An append the store
// acknowledges without modifying anything (a structurally identical order is
// already present) is a persistence failure.
func (s *UserService) PlaceOrder(ctx context.Context, userID int64, order domain.Order) error {
	exists, err := s.store.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.NewNotFound("User", map[string]any{"userId": userID})
	}

	res, err := s.store.AppendOrder(ctx, userID, order)
	if err != nil {
		return err
	}
	if !res.Acknowledged || res.ModifiedCount == 0 {
		return apperrors.NewPersistenceFailure("Failed to create order")
	}

	s.publish(ctx, events.EventOrderPlaced, userID, events.OrderPlacedPayload{
		ProductName: order.ProductName,
		Quantity:    order.Quantity,
		Price:       order.Price,
	})
	return nil
}

// Orders lists a user's orders.
func (s *UserService) Orders(ctx context.Context, userID int64) ([]domain.Order, error) {
	exists, err := s.store.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NewNotFound("User", map[string]any{"userId": userID})
	}
	return s.store.OrdersByUserID(ctx, userID)
}

// OrderTotal computes the user's order total. A nil total means the user has
// no orders, which is not an error.
func (s *UserService) OrderTotal(ctx context.Context, userID int64) (*decimal.Decimal, error) {
	exists, err := s.store.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NewNotFound("User", map[string]any{"userId": userID})
	}
	return s.store.OrderTotalByUserID(ctx, userID)
}

func (s *UserService) publish(ctx context.Context, eventType events.EventType, userID int64, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}

func patchFieldNames(patch domain.UserPatch) []string {
	fields := []string{}
	if patch.UserID != nil {
		fields = append(fields, "userId")
	}
	if patch.Username != nil {
		fields = append(fields, "username")
	}
	if patch.FullName != nil {
		fields = append(fields, "fullName")
	}
	if patch.Age != nil {
		fields = append(fields, "age")
	}
	if patch.Email != nil {
		fields = append(fields, "email")
	}
	if patch.Password != nil {
		fields = append(fields, "password")
	}
	if patch.Address != nil {
		fields = append(fields, "address")
	}
	return fields
}
