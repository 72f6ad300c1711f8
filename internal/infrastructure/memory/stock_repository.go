package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-inventario/internal/domain"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	"github.com/jhoicas/taller-inventario/internal/domain/repository"
)

var (
	_ repository.StockRepository    = (*StockRepo)(nil)
	_ repository.SequenceRepository = (*SequenceRepo)(nil)
)

// StockRepo existencias en memoria. Dentro de Run el mutex del Store ya serializa los escritores,
// por eso GetForUpdate equivale a Get.
type StockRepo struct {
	a access
}

func (r *StockRepo) Get(_ context.Context, key entity.StockKey) (*entity.StockRecord, error) {
	var out *entity.StockRecord
	r.a.do(func(st *state) {
		if rec, ok := st.stock[key]; ok {
			out = &rec
		}
	})
	return out, nil
}

func (r *StockRepo) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockRecord, error) {
	return r.Get(ctx, key)
}

func (r *StockRepo) Increase(_ context.Context, key entity.StockKey, delta decimal.Decimal) (decimal.Decimal, error) {
	var qty decimal.Decimal
	r.a.do(func(st *state) {
		rec, ok := st.stock[key]
		if !ok {
			rec = entity.StockRecord{StockKey: key, Quantity: decimal.Zero, MinQuantity: decimal.Zero}
		}
		rec.Quantity = rec.Quantity.Add(delta)
		rec.UpdatedAt = time.Now()
		st.stock[key] = rec
		qty = rec.Quantity
	})
	return qty, nil
}

func (r *StockRepo) Decrease(_ context.Context, key entity.StockKey, delta decimal.Decimal) (decimal.Decimal, bool, error) {
	var (
		qty decimal.Decimal
		ok  bool
	)
	r.a.do(func(st *state) {
		rec, found := st.stock[key]
		if !found || rec.Quantity.Sub(delta).IsNegative() {
			return
		}
		rec.Quantity = rec.Quantity.Sub(delta)
		rec.UpdatedAt = time.Now()
		st.stock[key] = rec
		qty, ok = rec.Quantity, true
	})
	return qty, ok, nil
}

func (r *StockRepo) SetMinQuantity(_ context.Context, key entity.StockKey, min decimal.Decimal) (bool, error) {
	var found bool
	r.a.do(func(st *state) {
		rec, ok := st.stock[key]
		if !ok {
			return
		}
		rec.MinQuantity = min
		rec.UpdatedAt = time.Now()
		st.stock[key] = rec
		found = true
	})
	return found, nil
}

func (r *StockRepo) ListByLocation(_ context.Context, tenantID, locationID string) ([]*entity.StockRecord, error) {
	return r.list(tenantID, locationID, false), nil
}

func (r *StockRepo) ListBelowMinimum(_ context.Context, tenantID, locationID string) ([]*entity.StockRecord, error) {
	return r.list(tenantID, locationID, true), nil
}

func (r *StockRepo) list(tenantID, locationID string, belowMin bool) []*entity.StockRecord {
	var out []*entity.StockRecord
	r.a.do(func(st *state) {
		for _, rec := range st.stock {
			if rec.TenantID != tenantID || rec.LocationID != locationID {
				continue
			}
			if belowMin && !rec.BelowMinimum() {
				continue
			}
			rec := rec
			out = append(out, &rec)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].StockKey.Less(out[j].StockKey) })
	return out
}

// SequenceRepo contadores de secuencia en memoria.
type SequenceRepo struct {
	a access
}

func (r *SequenceRepo) GetForUpdate(_ context.Context, tenantID, docType string) (*entity.SequenceCounter, error) {
	var out *entity.SequenceCounter
	r.a.do(func(st *state) {
		if c, ok := st.sequences[seqKey{tenantID, docType}]; ok {
			out = &c
		}
	})
	return out, nil
}

func (r *SequenceRepo) Create(_ context.Context, counter *entity.SequenceCounter) error {
	var err error
	r.a.do(func(st *state) {
		k := seqKey{counter.TenantID, counter.DocType}
		if _, ok := st.sequences[k]; ok {
			err = domain.ErrDuplicate
			return
		}
		st.sequences[k] = *counter
	})
	return err
}

func (r *SequenceRepo) Update(_ context.Context, counter *entity.SequenceCounter) error {
	r.a.do(func(st *state) {
		st.sequences[seqKey{counter.TenantID, counter.DocType}] = *counter
	})
	return nil
}
