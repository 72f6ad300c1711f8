package repository

import (
	"context"

	"github.com/jhoicas/taller-inventario/internal/domain/entity"
)

// SequenceRepository define el puerto de contadores de secuencia. Solo se usa dentro de transacciones.
type SequenceRepository interface {
	// GetForUpdate bloquea el contador; nil, nil si aún no existe.
	GetForUpdate(ctx context.Context, tenantID, docType string) (*entity.SequenceCounter, error)
	// Create inserta el contador; domain.ErrDuplicate si otro escritor lo creó primero.
	// Un fallo no invalida la transacción del llamador.
	Create(ctx context.Context, counter *entity.SequenceCounter) error
	Update(ctx context.Context, counter *entity.SequenceCounter) error
}
