package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-inventario/internal/domain"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	"github.com/jhoicas/taller-inventario/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo documentos en memoria. Guarda y devuelve copias de las líneas.
type DocumentRepo struct {
	a access
}

func (r *DocumentRepo) Create(_ context.Context, doc *entity.Document) error {
	var err error
	r.a.do(func(st *state) {
		if _, ok := st.documents[doc.ID]; ok {
			err = domain.ErrDuplicate
			return
		}
		st.documents[doc.ID] = copyDocument(*doc)
	})
	return err
}

func (r *DocumentRepo) GetByID(_ context.Context, id string) (*entity.Document, error) {
	var out *entity.Document
	r.a.do(func(st *state) {
		if d, ok := st.documents[id]; ok {
			d = copyDocument(d)
			out = &d
		}
	})
	return out, nil
}

func (r *DocumentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Document, error) {
	return r.GetByID(ctx, id)
}

func (r *DocumentRepo) Update(_ context.Context, doc *entity.Document) error {
	var err error
	r.a.do(func(st *state) {
		stored, ok := st.documents[doc.ID]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		header := *doc
		header.Lines = stored.Lines
		st.documents[doc.ID] = header
	})
	return err
}

func (r *DocumentRepo) ReplaceLines(_ context.Context, documentID string, lines []entity.DocumentLine) error {
	var err error
	r.a.do(func(st *state) {
		stored, ok := st.documents[documentID]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		stored.Lines = append([]entity.DocumentLine(nil), lines...)
		st.documents[documentID] = stored
	})
	return err
}

func (r *DocumentRepo) SetActive(_ context.Context, id string, active bool) error {
	var err error
	r.a.do(func(st *state) {
		stored, ok := st.documents[id]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		stored.Active = active
		st.documents[id] = stored
	})
	return err
}

func (r *DocumentRepo) FindCompanion(_ context.Context, saleID string) (*entity.Document, error) {
	var out *entity.Document
	r.a.do(func(st *state) {
		for _, d := range st.documents {
			if d.IsCompanion() && d.ReferenceID == saleID {
				d = copyDocument(d)
				out = &d
				return
			}
		}
	})
	return out, nil
}

func (r *DocumentRepo) List(_ context.Context, f repository.DocumentFilter) ([]*entity.Document, int, error) {
	var list []*entity.Document
	r.a.do(func(st *state) {
		for _, d := range st.documents {
			d := d
			if d.TenantID != f.TenantID || d.Kind != f.Kind {
				continue
			}
			if f.LocationID != "" && d.LocationID != f.LocationID {
				continue
			}
			if f.Active != nil && d.Active != *f.Active {
				continue
			}
			d.Lines = nil
			list = append(list, &d)
		}
	})
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].Code > list[j].Code
	})
	total := len(list)
	return page(list, f.Limit, f.Offset), total, nil
}

func (r *DocumentRepo) ListActiveReceiptPrices(_ context.Context, tenantID, locationID, productID, unitID string) ([]decimal.Decimal, error) {
	var prices []decimal.Decimal
	r.a.do(func(st *state) {
		for _, d := range st.documents {
			if d.Kind != entity.DocumentReceipt || !d.Active || d.TenantID != tenantID || d.LocationID != locationID {
				continue
			}
			for _, l := range d.Lines {
				if l.Kind == entity.LineProduct && l.ProductID == productID && l.UnitID == unitID {
					prices = append(prices, l.UnitPrice)
				}
			}
		}
	})
	return prices, nil
}

func copyDocument(d entity.Document) entity.Document {
	d.Lines = append([]entity.DocumentLine(nil), d.Lines...)
	return d
}
