package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/taller-inventario/internal/domain"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	"github.com/jhoicas/taller-inventario/internal/domain/repository"
)

var (
	_ repository.LocationRepository = (*LocationRepo)(nil)
	_ repository.ProductRepository  = (*ProductRepo)(nil)
)

// LocationRepo sedes en memoria.
type LocationRepo struct {
	a access
}

func (r *LocationRepo) Create(_ context.Context, location *entity.Location) error {
	var err error
	r.a.do(func(st *state) {
		if _, ok := st.locations[location.ID]; ok {
			err = domain.ErrDuplicate
			return
		}
		st.locations[location.ID] = *location
	})
	return err
}

func (r *LocationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	var out *entity.Location
	r.a.do(func(st *state) {
		if l, ok := st.locations[id]; ok {
			out = &l
		}
	})
	return out, nil
}

func (r *LocationRepo) Update(_ context.Context, location *entity.Location) error {
	var err error
	r.a.do(func(st *state) {
		if _, ok := st.locations[location.ID]; !ok {
			err = domain.ErrNotFound
			return
		}
		st.locations[location.ID] = *location
	})
	return err
}

func (r *LocationRepo) ListByTenant(_ context.Context, tenantID string, limit, offset int) ([]*entity.Location, error) {
	var list []*entity.Location
	r.a.do(func(st *state) {
		for _, l := range st.locations {
			if l.TenantID == tenantID {
				l := l
				list = append(list, &l)
			}
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return page(list, limit, offset), nil
}

// ProductRepo productos en memoria.
type ProductRepo struct {
	a access
}

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	var err error
	r.a.do(func(st *state) {
		for _, p := range st.products {
			if p.ID == product.ID || (p.TenantID == product.TenantID && p.SKU == product.SKU) {
				err = domain.ErrDuplicate
				return
			}
		}
		p := *product
		p.Units = append([]entity.ProductUnit(nil), product.Units...)
		st.products[p.ID] = p
	})
	return err
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	r.a.do(func(st *state) {
		if p, ok := st.products[id]; ok {
			out = copyProduct(p)
		}
	})
	return out, nil
}

func (r *ProductRepo) GetByTenantAndSKU(_ context.Context, tenantID, sku string) (*entity.Product, error) {
	var out *entity.Product
	r.a.do(func(st *state) {
		for _, p := range st.products {
			if p.TenantID == tenantID && p.SKU == sku {
				out = copyProduct(p)
				return
			}
		}
	})
	return out, nil
}

func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	var err error
	r.a.do(func(st *state) {
		stored, ok := st.products[product.ID]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		stored.Name = product.Name
		stored.Description = product.Description
		stored.Price = product.Price
		stored.UpdatedAt = product.UpdatedAt
		st.products[product.ID] = stored
	})
	return err
}

func (r *ProductRepo) ListByTenant(_ context.Context, tenantID string, limit, offset int) ([]*entity.Product, error) {
	var list []*entity.Product
	r.a.do(func(st *state) {
		for _, p := range st.products {
			if p.TenantID == tenantID {
				list = append(list, copyProduct(p))
			}
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].SKU < list[j].SKU })
	return page(list, limit, offset), nil
}

func copyProduct(p entity.Product) *entity.Product {
	p.Units = append([]entity.ProductUnit(nil), p.Units...)
	return &p
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
