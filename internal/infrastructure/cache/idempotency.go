// Package cache guarda claves de idempotencia de las peticiones de creación de documentos.
package cache

import (
	"context"
	"time"
)

// IdempotencyStore reserva claves con TTL. Reserve devuelve false si la clave ya estaba reservada.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
