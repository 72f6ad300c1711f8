package entity

import (
	"fmt"
	"time"
)

// SequenceCounter último número emitido por (tenant, tipo de documento).
type SequenceCounter struct {
	TenantID  string
	DocType   string
	Last      int64
	UpdatedAt time.Time
}

// FormatCode arma el código visible, p. ej. "ENT-000042".
func FormatCode(prefix string, n int64) string {
	return fmt.Sprintf("%s-%06d", prefix, n)
}
