package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/taller-inventario/internal/domain"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	"github.com/jhoicas/taller-inventario/internal/domain/repository"
)

// DefaultSequenceAttempts intentos de creación del contador antes de rendirse.
const DefaultSequenceAttempts = 5

// SequenceGenerator emite códigos consecutivos por (tenant, tipo de documento).
// El contador se bloquea con la transacción del llamador: si esta se revierte, el número no se consume.
type SequenceGenerator struct {
	txRunner    TxRunner
	maxAttempts int
	now         func() time.Time
}

// NewSequenceGenerator construye el generador. maxAttempts <= 0 usa DefaultSequenceAttempts.
func NewSequenceGenerator(txRunner TxRunner, maxAttempts int) *SequenceGenerator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultSequenceAttempts
	}
	return &SequenceGenerator{txRunner: txRunner, maxAttempts: maxAttempts, now: time.Now}
}

// Next devuelve el siguiente código dentro de la transacción del llamador.
// Si el contador no existe lo crea en 0; si otro escritor lo creó primero, relee y bloquea.
func (g *SequenceGenerator) Next(ctx context.Context, seqs repository.SequenceRepository, tenantID, docType string) (string, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		counter, err := seqs.GetForUpdate(ctx, tenantID, docType)
		if err != nil {
			return "", err
		}
		if counter == nil {
			counter = &entity.SequenceCounter{TenantID: tenantID, DocType: docType, Last: 0, UpdatedAt: g.now()}
			if err := seqs.Create(ctx, counter); err != nil {
				if errors.Is(err, domain.ErrDuplicate) {
					continue
				}
				return "", err
			}
			// La fila recién insertada queda bloqueada por esta transacción.
		}
		counter.Last++
		counter.UpdatedAt = g.now()
		if err := seqs.Update(ctx, counter); err != nil {
			return "", err
		}
		return entity.FormatCode(docType, counter.Last), nil
	}
	return "", domain.ErrSequenceContention
}

// Generate emite un código en su propia transacción.
func (g *SequenceGenerator) Generate(ctx context.Context, tenantID, docType string) (string, error) {
	if tenantID == "" || docType == "" {
		return "", domain.ErrInvalidInput
	}
	var code string
	err := g.txRunner.Run(ctx, func(repos Repositories) error {
		c, err := g.Next(ctx, repos.Sequences(), tenantID, docType)
		if err != nil {
			return err
		}
		code = c
		return nil
	})
	if err != nil {
		return "", err
	}
	return code, nil
}
