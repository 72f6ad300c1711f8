package entity

import "time"

// Location representa una sede o bodega del taller donde se guarda inventario.
type Location struct {
	ID        string
	TenantID  string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
