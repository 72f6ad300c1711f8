package inventory

import (
	"github.com/jhoicas/taller-inventario/internal/application/dto"
	"github.com/jhoicas/taller-inventario/internal/domain"
)

// Una entrada requiere proveedor; sus líneas suman existencias.
func validateReceipt(in dto.DocumentRequest, verr *domain.ValidationError) {
	if in.SupplierID == "" {
		verr.Add("supplier_id", "es requerido en entradas")
	}
}
