// Package memory implementa los repositorios en memoria. Las transacciones se serializan con un
// mutex y trabajan sobre una copia del estado que solo se publica si fn termina sin error.
// Se usa en desarrollo (STORE_DRIVER=memory) y en las pruebas de los casos de uso.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/taller-inventario/internal/application/inventory"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	"github.com/jhoicas/taller-inventario/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

type seqKey struct {
	tenantID string
	docType  string
}

type state struct {
	locations map[string]entity.Location
	products  map[string]entity.Product
	stock     map[entity.StockKey]entity.StockRecord
	sequences map[seqKey]entity.SequenceCounter
	documents map[string]entity.Document
}

func newState() *state {
	return &state{
		locations: make(map[string]entity.Location),
		products:  make(map[string]entity.Product),
		stock:     make(map[entity.StockKey]entity.StockRecord),
		sequences: make(map[seqKey]entity.SequenceCounter),
		documents: make(map[string]entity.Document),
	}
}

// clone copia los mapas. Los slices guardados (líneas, unidades) nunca se mutan en sitio.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.locations {
		c.locations[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	for k, v := range s.documents {
		c.documents[k] = v
	}
	return c
}

// Store almacén en memoria.
type Store struct {
	mu    sync.Mutex
	state *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{state: newState()}
}

// Run ejecuta fn con repositorios sobre una copia del estado; la publica solo si fn no falla.
func (s *Store) Run(ctx context.Context, fn func(repos inventory.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.state.clone()
	if err := fn(txRepos{a: access{store: s, tx: work}}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = work
	return nil
}

// Locations repositorio de sedes fuera de transacción.
func (s *Store) Locations() repository.LocationRepository { return &LocationRepo{a: access{store: s}} }

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() repository.ProductRepository { return &ProductRepo{a: access{store: s}} }

// Documents repositorio de documentos fuera de transacción.
func (s *Store) Documents() repository.DocumentRepository { return &DocumentRepo{a: access{store: s}} }

// Stock repositorio de existencias fuera de transacción.
func (s *Store) Stock() repository.StockRepository { return &StockRepo{a: access{store: s}} }

// access resuelve sobre qué estado opera un repositorio: el de la tx en curso o el publicado.
type access struct {
	store *Store
	tx    *state
}

func (a access) do(fn func(st *state)) {
	if a.tx != nil {
		fn(a.tx)
		return
	}
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	fn(a.store.state)
}

type txRepos struct {
	a access
}

func (r txRepos) Stock() repository.StockRepository         { return &StockRepo{a: r.a} }
func (r txRepos) Sequences() repository.SequenceRepository { return &SequenceRepo{a: r.a} }
func (r txRepos) Documents() repository.DocumentRepository { return &DocumentRepo{a: r.a} }
