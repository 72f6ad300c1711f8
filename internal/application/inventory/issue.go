package inventory

import (
	"github.com/jhoicas/taller-inventario/internal/application/dto"
	"github.com/jhoicas/taller-inventario/internal/domain"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
)

// Motivos que un usuario puede registrar. "sale" queda para las salidas generadas por ventas.
var issueReasons = map[string]bool{
	entity.ReasonAdjustment:      true,
	entity.ReasonDefectiveReturn: true,
	entity.ReasonOther:           true,
}

func validateIssue(in dto.DocumentRequest, verr *domain.ValidationError) {
	switch {
	case in.ReasonCode == "":
		verr.Add("reason_code", "es requerido en salidas")
	case in.ReasonCode == entity.ReasonSale:
		verr.Add("reason_code", "el motivo sale es reservado para ventas")
	case !issueReasons[in.ReasonCode]:
		verr.Add("reason_code", "debe ser uno de: adjustment defective-return other")
	}
}
