package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/taller-inventario/internal/domain"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	"github.com/jhoicas/taller-inventario/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo contadores de secuencia sobre PostgreSQL. Pensado para usarse con una tx.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// GetForUpdate bloquea el contador (SELECT FOR UPDATE); nil si no existe.
func (r *SequenceRepo) GetForUpdate(ctx context.Context, tenantID, docType string) (*entity.SequenceCounter, error) {
	query := `
		SELECT tenant_id, doc_type, last_value, updated_at
		FROM sequence_counters WHERE tenant_id = $1 AND doc_type = $2
		FOR UPDATE`
	var c entity.SequenceCounter
	err := r.q.QueryRow(ctx, query, tenantID, docType).Scan(&c.TenantID, &c.DocType, &c.Last, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sequence for update: %w", err)
	}
	return &c, nil
}

// Create inserta el contador dentro de un SAVEPOINT: una violación de unicidad
// (otro escritor lo creó primero) se revierte sin abortar la transacción del llamador.
func (r *SequenceRepo) Create(ctx context.Context, counter *entity.SequenceCounter) error {
	sp, err := r.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("savepoint sequence: %w", err)
	}
	_, err = sp.Exec(ctx, `
		INSERT INTO sequence_counters (tenant_id, doc_type, last_value, updated_at)
		VALUES ($1, $2, $3, $4)`,
		counter.TenantID, counter.DocType, counter.Last, counter.UpdatedAt,
	)
	if err != nil {
		_ = sp.Rollback(ctx)
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sequence: %w", err)
	}
	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("release savepoint sequence: %w", err)
	}
	return nil
}

// Update guarda el último número emitido.
func (r *SequenceRepo) Update(ctx context.Context, counter *entity.SequenceCounter) error {
	_, err := r.q.Exec(ctx, `
		UPDATE sequence_counters SET last_value = $3, updated_at = $4
		WHERE tenant_id = $1 AND doc_type = $2`,
		counter.TenantID, counter.DocType, counter.Last, counter.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update sequence: %w", err)
	}
	return nil
}
