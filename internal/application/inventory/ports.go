package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/taller-inventario/internal/domain/repository"
)

// Repositories repositorios atados a una misma transacción.
type Repositories interface {
	Stock() repository.StockRepository
	Sequences() repository.SequenceRepository
	Documents() repository.DocumentRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback de todo lo escrito; si no, Commit.
// Los fallos de concurrencia recuperables se devuelven envueltos en domain.ErrTransient.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repositories) error) error
}

// Recorder recibe métricas de las operaciones del coordinador. Nil = sin métricas.
type Recorder interface {
	ObserveDocument(kind, op, outcome string, elapsed time.Duration)
	TxRetry(op string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveDocument(string, string, string, time.Duration) {}
func (nopRecorder) TxRetry(string)                                       {}
