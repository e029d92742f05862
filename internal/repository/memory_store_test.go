package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/user-orders-service/internal/domain"
	apperrors "github.com/spec-kit/user-orders-service/pkg/util/errorutil"
)

func seedUser(t *testing.T, store UserStore, userID int64, username string) *domain.User {
	t.Helper()
	created, err := store.Create(context.Background(), &domain.User{
		UserID:   userID,
		Username: username,
		FullName: domain.FullName{FirstName: "Ada", LastName: "Lovelace"},
		Age:      30,
		Email:    username + "@example.com",
		Password: "$2a$12$hash",
		Address:  domain.Address{Street: "1 Main St", City: "London", Country: "UK"},
	})
	require.NoError(t, err)
	return created
}

func TestCreateRejectsDuplicateUserID(t *testing.T) {
	store := NewMemoryUserStore()
	seedUser(t, store, 1, "ada")

	_, err := store.Create(context.Background(), &domain.User{UserID: 1, Username: "other"})
	require.Error(t, err)
	require.True(t, apperrors.IsKind(err, apperrors.KindDuplicate))
}

func TestListAllProjectsWhitelistOnly(t *testing.T) {
	store := NewMemoryUserStore()
	created := seedUser(t, store, 1, "ada")
	require.NotEmpty(t, created.Password)

	summaries, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Equal(t, "ada", summaries[0].Username)
	require.Equal(t, "London", summaries[0].Address.City)
}

func TestGetByIDMissingIsNotFound(t *testing.T) {
	store := NewMemoryUserStore()

	_, err := store.GetByID(context.Background(), 404)
	require.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestUpdateByIDMergesOnlyPresentFields(t *testing.T) {
	store := NewMemoryUserStore()
	seedUser(t, store, 1, "ada")

	newAge := 31
	updated, err := store.UpdateByID(context.Background(), 1, domain.UserPatch{Age: &newAge})
	require.NoError(t, err)
	require.Equal(t, 31, updated.Age)
	require.Equal(t, "ada", updated.Username)
	require.Equal(t, "Ada", updated.FullName.FirstName)
}

func TestSoftDeleteKeepsRecordQueryable(t *testing.T) {
	store := NewMemoryUserStore()
	seedUser(t, store, 1, "ada")

	require.NoError(t, store.SoftDelete(context.Background(), 1))

	detail, err := store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.EqualValues(t, 1, detail.UserID)

	exists, err := store.Exists(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, exists)
}

func TestAppendOrderSetSemantics(t *testing.T) {
	store := NewMemoryUserStore()
	seedUser(t, store, 1, "ada")
	order := domain.Order{ProductName: "widget", Quantity: 2, Price: decimal.RequireFromString("3")}

	first, err := store.AppendOrder(context.Background(), 1, order)
	require.NoError(t, err)
	require.EqualValues(t, 1, first.ModifiedCount)

	second, err := store.AppendOrder(context.Background(), 1, order)
	require.NoError(t, err)
	require.EqualValues(t, 1, second.MatchedCount)
	require.EqualValues(t, 0, second.ModifiedCount)

	orders, err := store.OrdersByUserID(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, orders, 1)
}

func TestOrderTotal(t *testing.T) {
	store := NewMemoryUserStore()
	seedUser(t, store, 1, "ada")
	ctx := context.Background()

	_, err := store.AppendOrder(ctx, 1, domain.Order{ProductName: "widget", Quantity: 2, Price: decimal.RequireFromString("3")})
	require.NoError(t, err)
	_, err = store.AppendOrder(ctx, 1, domain.Order{ProductName: "gadget", Quantity: 1, Price: decimal.RequireFromString("5")})
	require.NoError(t, err)

	total, err := store.OrderTotalByUserID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, total)
	require.True(t, total.Equal(decimal.RequireFromString("11")))
}

func TestOrderTotalNoOrdersIsNil(t *testing.T) {
	store := NewMemoryUserStore()
	seedUser(t, store, 1, "ada")

	total, err := store.OrderTotalByUserID(context.Background(), 1)
	require.NoError(t, err)
	require.Nil(t, total)
}

func TestStoredStateIsNotAliased(t *testing.T) {
	store := NewMemoryUserStore()
	created := seedUser(t, store, 1, "ada")

	created.Username = "mutated"
	detail, err := store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "ada", detail.Username)
}
