package repository

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/user-orders-service/internal/domain"
)

func TestOrderDocRoundTrip(t *testing.T) {
	order := domain.Order{
		ProductName: "widget",
		Quantity:    2,
		Price:       decimal.RequireFromString("3.50"),
	}

	doc, err := toOrderDoc(order)
	require.NoError(t, err)

	back, err := fromOrderDoc(doc)
	require.NoError(t, err)
	require.Equal(t, order.ProductName, back.ProductName)
	require.Equal(t, order.Quantity, back.Quantity)
	require.True(t, order.Price.Equal(back.Price))
}

func TestOrderDocPreservesLargeQuantity(t *testing.T) {
	order := domain.Order{
		ProductName: "widget",
		Quantity:    math.MaxInt32 + 1,
		Price:       decimal.RequireFromString("0.01"),
	}

	doc, err := toOrderDoc(order)
	require.NoError(t, err)
	require.EqualValues(t, order.Quantity, doc.Quantity)

	back, err := fromOrderDoc(doc)
	require.NoError(t, err)
	require.Equal(t, order.Quantity, back.Quantity)
}
