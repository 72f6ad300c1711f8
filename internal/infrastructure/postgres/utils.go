package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/taller-inventario/internal/domain"
)

// Querier lo que los repositorios necesitan de un pool o de una tx (ambos lo implementan).
// Begin sobre una tx abre un SAVEPOINT.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Códigos SQLSTATE usados.
const (
	codeUniqueViolation      = "23505"
	codeInvalidText          = "22P02"
	codeNumericOutOfRange    = "22003"
	codeCheckViolation       = "23514"
	codeLockNotAvailable     = "55P03"
	codeDeadlockDetected     = "40P01"
	codeSerializationFailure = "40001"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// isNotFound trata como ausente tanto ErrNoRows como un identificador con formato UUID inválido.
func isNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || pgCode(err) == codeInvalidText
}

// isTransient indica fallos de concurrencia que se resuelven reintentando la transacción.
func isTransient(err error) bool {
	switch pgCode(err) {
	case codeLockNotAvailable, codeDeadlockDetected, codeSerializationFailure:
		return true
	}
	return false
}

// classify envuelve en domain.ErrTransient los errores de concurrencia de PostgreSQL y en
// domain.ErrInvalidInput los valores que la base rechaza por rango o CHECK.
func classify(err error) error {
	if err == nil || errors.Is(err, domain.ErrTransient) || errors.Is(err, domain.ErrInvalidInput) {
		return err
	}
	switch {
	case isTransient(err):
		return fmt.Errorf("%w: %w", domain.ErrTransient, err)
	case pgCode(err) == codeNumericOutOfRange, pgCode(err) == codeCheckViolation:
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	return err
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// nullIfEmpty convierte "" en NULL para columnas opcionales.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
