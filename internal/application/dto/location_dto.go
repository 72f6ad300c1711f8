package dto

import "time"

// CreateLocationRequest entrada para crear una sede.
type CreateLocationRequest struct {
	TenantID string `json:"tenant_id,omitempty"` // solo superadmin
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Address  string `json:"address" validate:"max=300"`
}

// UpdateLocationRequest entrada para actualizar una sede.
type UpdateLocationRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Address *string `json:"address" validate:"omitempty,max=300"`
}

// LocationResponse salida de una sede.
type LocationResponse struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LocationListResponse lista paginada de sedes.
type LocationListResponse struct {
	Items []LocationResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
