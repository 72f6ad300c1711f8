package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/taller-inventario/internal/domain"
)

func pgErr(code string) error {
	return fmt.Errorf("insert lines: %w", &pgconn.PgError{Code: code})
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))

	for _, code := range []string{codeLockNotAvailable, codeDeadlockDetected, codeSerializationFailure} {
		assert.ErrorIs(t, classify(pgErr(code)), domain.ErrTransient, code)
	}
	for _, code := range []string{codeNumericOutOfRange, codeCheckViolation} {
		err := classify(pgErr(code))
		assert.ErrorIs(t, err, domain.ErrInvalidInput, code)
		assert.NotErrorIs(t, err, domain.ErrTransient, code)
	}

	plain := errors.New("boom")
	assert.Equal(t, plain, classify(plain))
	transient := classify(pgErr(codeDeadlockDetected))
	assert.Equal(t, transient, classify(transient), "no se envuelve dos veces")
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(pgx.ErrNoRows))
	assert.True(t, isNotFound(pgErr(codeInvalidText)))
	assert.False(t, isNotFound(pgErr(codeUniqueViolation)))
	assert.True(t, isUniqueViolation(pgErr(codeUniqueViolation)))
}
