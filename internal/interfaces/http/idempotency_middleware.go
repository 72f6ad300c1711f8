package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/taller-inventario/internal/application/dto"
	"github.com/jhoicas/taller-inventario/internal/infrastructure/cache"
)

// HeaderIdempotencyKey cabecera opcional para creación idempotente.
const HeaderIdempotencyKey = "Idempotency-Key"

// IdempotencyMiddleware reserva la clave (tenant + método + ruta + Idempotency-Key) antes de ejecutar
// la petición. Una repetición mientras la clave esté reservada responde 409 DUPLICATE_REQUEST.
// Si la petición falla (status >= 400) la clave se libera para permitir el reintento.
func IdempotencyMiddleware(store cache.IdempotencyStore, ttl time.Duration, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Get(HeaderIdempotencyKey))
		if raw == "" || store == nil {
			return c.Next()
		}
		if len(raw) > 200 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "Idempotency-Key demasiado larga"})
		}
		key := strings.Join([]string{GetTenantID(c), c.Method(), c.Path(), raw}, ":")
		ctx := c.UserContext()

		ok, err := store.Reserve(ctx, key, ttl)
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("idempotencia no disponible")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "TRANSIENT", Message: "idempotencia no disponible"})
		}
		if !ok {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_REQUEST", Message: "petición ya procesada o en curso"})
		}

		err = c.Next()
		if err != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
			if rerr := store.Release(ctx, key); rerr != nil {
				log.Warn().Err(rerr).Str("key", key).Msg("no se pudo liberar la clave de idempotencia")
			}
		}
		return err
	}
}
