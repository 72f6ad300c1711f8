package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-inventario/internal/application/inventory"
	"github.com/jhoicas/taller-inventario/internal/domain"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	domaininv "github.com/jhoicas/taller-inventario/internal/domain/inventory"
	"github.com/jhoicas/taller-inventario/internal/domain/repository"
	"github.com/jhoicas/taller-inventario/internal/infrastructure/memory"
)

func ledgerKey(product string) entity.StockKey {
	return entity.StockKey{TenantID: tenantA, LocationID: "loc-1", ProductID: product, UnitID: unitUnd}
}

func TestStockLedger_Adjust(t *testing.T) {
	store := memory.NewStore()
	ledger := inventory.NewStockLedger()
	ctx := context.Background()
	k := ledgerKey("p1")

	qty, err := ledger.Adjust(ctx, store.Stock(), k, dec("10"))
	require.NoError(t, err)
	assert.True(t, dec("10").Equal(qty))

	qty, err = ledger.Adjust(ctx, store.Stock(), k, dec("-3.5"))
	require.NoError(t, err)
	assert.True(t, dec("6.5").Equal(qty))

	qty, err = ledger.Adjust(ctx, store.Stock(), k, dec("0"))
	require.NoError(t, err)
	assert.True(t, dec("6.5").Equal(qty), "delta cero no modifica")

	_, err = ledger.Adjust(ctx, store.Stock(), k, dec("-7"))
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.True(t, dec("6.5").Equal(insufficient.Available))
	assert.True(t, dec("7").Equal(insufficient.Requested))

	rec, err := ledger.Get(ctx, store.Stock(), k)
	require.NoError(t, err)
	assert.True(t, dec("6.5").Equal(rec.Quantity), "el decremento fallido no tiene efecto")
}

func TestStockLedger_NegativeOnMissingRecord(t *testing.T) {
	store := memory.NewStore()
	_, err := inventory.NewStockLedger().Adjust(context.Background(), store.Stock(), ledgerKey("p1"), dec("-1"))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	rec, err := store.Stock().Get(context.Background(), ledgerKey("p1"))
	require.NoError(t, err)
	assert.Nil(t, rec, "no se crea registro")
}

func TestStockLedger_LockReturnsZeroForMissingKeys(t *testing.T) {
	store := memory.NewStore()
	ledger := inventory.NewStockLedger()
	ctx := context.Background()
	_, err := ledger.Adjust(ctx, store.Stock(), ledgerKey("p2"), dec("4"))
	require.NoError(t, err)

	err = store.Run(ctx, func(repos inventory.Repositories) error {
		view, err := ledger.Lock(ctx, repos.Stock(), []entity.StockKey{ledgerKey("p2"), ledgerKey("p1"), ledgerKey("p2")})
		if err != nil {
			return err
		}
		assert.Len(t, view, 2)
		assert.True(t, dec("4").Equal(view[ledgerKey("p2")]))
		assert.True(t, view[ledgerKey("p1")].IsZero())
		return nil
	})
	require.NoError(t, err)
}

func TestStockLedger_ApplyNetsPerKey(t *testing.T) {
	store := memory.NewStore()
	ledger := inventory.NewStockLedger()
	ctx := context.Background()
	_, err := ledger.Adjust(ctx, store.Stock(), ledgerKey("p1"), dec("2"))
	require.NoError(t, err)

	// -10 +9 sobre 2 cabe si se neta (-1), aunque -10 por separado no.
	err = store.Run(ctx, func(repos inventory.Repositories) error {
		return ledger.Apply(ctx, repos.Stock(), []domaininv.Delta{
			{Key: ledgerKey("p1"), Quantity: dec("-10")},
			{Key: ledgerKey("p1"), Quantity: dec("9")},
			{Key: ledgerKey("p3"), Quantity: dec("5")},
		})
	})
	require.NoError(t, err)

	for product, want := range map[string]string{"p1": "1", "p3": "5"} {
		rec, err := store.Stock().Get(ctx, ledgerKey(product))
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.True(t, dec(want).Equal(rec.Quantity), product)
	}
}

func TestStockLedger_ApplyRollsBackOnFailure(t *testing.T) {
	store := memory.NewStore()
	ledger := inventory.NewStockLedger()
	ctx := context.Background()

	err := store.Run(ctx, func(repos inventory.Repositories) error {
		return ledger.Apply(ctx, repos.Stock(), []domaininv.Delta{
			{Key: ledgerKey("p1"), Quantity: dec("5")},
			{Key: ledgerKey("p2"), Quantity: dec("-1")},
		})
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	rec, err := store.Stock().Get(ctx, ledgerKey("p1"))
	require.NoError(t, err)
	assert.Nil(t, rec, "la transacción revertida no deja el incremento")
}

// brokenReads falla al leer; el resto delega en el repositorio real.
type brokenReads struct {
	repository.StockRepository
	err error
}

func (b brokenReads) Get(context.Context, entity.StockKey) (*entity.StockRecord, error) {
	return nil, b.err
}

func TestStockLedger_AdjustPropagatesReadError(t *testing.T) {
	store := memory.NewStore()
	ledger := inventory.NewStockLedger()
	ctx := context.Background()
	_, err := ledger.Adjust(ctx, store.Stock(), ledgerKey("p1"), dec("2"))
	require.NoError(t, err)

	readErr := errors.New("conexión perdida")
	_, err = ledger.Adjust(ctx, brokenReads{StockRepository: store.Stock(), err: readErr}, ledgerKey("p1"), dec("-5"))
	require.ErrorIs(t, err, readErr)
	assert.NotErrorIs(t, err, domain.ErrInsufficientStock, "no se informa una disponibilidad que no se pudo leer")
}

func TestStockLedger_SetMinimumOnlyExistingRecords(t *testing.T) {
	store := memory.NewStore()
	ledger := inventory.NewStockLedger()
	ctx := context.Background()

	err := ledger.SetMinimum(ctx, store.Stock(), ledgerKey("p1"), dec("3"))
	require.ErrorIs(t, err, domain.ErrNotFound)
	rec, err := store.Stock().Get(ctx, ledgerKey("p1"))
	require.NoError(t, err)
	assert.Nil(t, rec)

	_, err = ledger.Adjust(ctx, store.Stock(), ledgerKey("p1"), dec("1"))
	require.NoError(t, err)
	require.NoError(t, ledger.SetMinimum(ctx, store.Stock(), ledgerKey("p1"), dec("3")))
	rec, err = store.Stock().Get(ctx, ledgerKey("p1"))
	require.NoError(t, err)
	assert.True(t, dec("3").Equal(rec.MinQuantity))
	assert.True(t, rec.BelowMinimum())
}
