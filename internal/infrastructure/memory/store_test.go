package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-inventario/internal/application/inventory"
	"github.com/jhoicas/taller-inventario/internal/domain"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	"github.com/jhoicas/taller-inventario/internal/infrastructure/memory"
)

var key = entity.StockKey{TenantID: "t1", LocationID: "l1", ProductID: "p1", UnitID: "und"}

func TestStore_RunPublishesOnSuccess(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	err := store.Run(ctx, func(repos inventory.Repositories) error {
		_, err := repos.Stock().Increase(ctx, key, decimal.NewFromInt(3))
		return err
	})
	require.NoError(t, err)

	rec, err := store.Stock().Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, decimal.NewFromInt(3).Equal(rec.Quantity))
}

func TestStore_RunDiscardsOnError(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.Run(ctx, func(repos inventory.Repositories) error {
		if _, err := repos.Stock().Increase(ctx, key, decimal.NewFromInt(3)); err != nil {
			return err
		}
		doc := &entity.Document{ID: "d1", TenantID: "t1", Kind: entity.DocumentReceipt, Active: true}
		if err := repos.Documents().Create(ctx, doc); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	rec, err := store.Stock().Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, rec)
	doc, err := store.Documents().GetByID(ctx, "d1")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestStore_RunHonoursCancelledContext(t *testing.T) {
	store := memory.NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := store.Run(ctx, func(repos inventory.Repositories) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestStockRepo_DecreaseNeverNegative(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	_, err := store.Stock().Increase(ctx, key, decimal.NewFromInt(2))
	require.NoError(t, err)

	_, ok, err := store.Stock().Decrease(ctx, key, decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.False(t, ok)

	qty, ok, err := store.Stock().Decrease(ctx, key, decimal.NewFromInt(2))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, qty.IsZero())
}

func TestDocumentRepo_ReturnsCopies(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	doc := &entity.Document{
		ID: "d1", TenantID: "t1", Kind: entity.DocumentReceipt, Active: true,
		Lines: []entity.DocumentLine{{ID: "l1", Kind: entity.LineProduct, ProductID: "p1", UnitID: "und", Quantity: decimal.NewFromInt(1)}},
	}
	require.NoError(t, store.Documents().Create(ctx, doc))
	assert.ErrorIs(t, store.Documents().Create(ctx, doc), domain.ErrDuplicate)

	got, err := store.Documents().GetByID(ctx, "d1")
	require.NoError(t, err)
	got.Lines[0].Quantity = decimal.NewFromInt(99)

	again, err := store.Documents().GetByID(ctx, "d1")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1).Equal(again.Lines[0].Quantity))
}

func TestDocumentRepo_FindCompanionAndReceiptPrices(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	line := func(price int64) []entity.DocumentLine {
		return []entity.DocumentLine{{Kind: entity.LineProduct, ProductID: "p1", UnitID: "und", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(price)}}
	}
	docs := []*entity.Document{
		{ID: "r1", TenantID: "t1", LocationID: "l1", Kind: entity.DocumentReceipt, Active: true, Lines: line(2)},
		{ID: "r2", TenantID: "t1", LocationID: "l1", Kind: entity.DocumentReceipt, Active: false, Lines: line(100)},
		{ID: "r3", TenantID: "t1", LocationID: "l2", Kind: entity.DocumentReceipt, Active: true, Lines: line(50)},
		{ID: "s1", TenantID: "t1", LocationID: "l1", Kind: entity.DocumentSale, Active: true},
		{ID: "i1", TenantID: "t1", LocationID: "l1", Kind: entity.DocumentIssue, Active: true, ReferenceType: entity.ReferenceSale, ReferenceID: "s1"},
	}
	for _, d := range docs {
		require.NoError(t, store.Documents().Create(ctx, d))
	}

	prices, err := store.Documents().ListActiveReceiptPrices(ctx, "t1", "l1", "p1", "und")
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.True(t, decimal.NewFromInt(2).Equal(prices[0]))

	companion, err := store.Documents().FindCompanion(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, companion)
	assert.Equal(t, "i1", companion.ID)

	none, err := store.Documents().FindCompanion(ctx, "r1")
	require.NoError(t, err)
	assert.Nil(t, none)
}
