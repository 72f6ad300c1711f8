package inventory

import "github.com/shopspring/decimal"

// Cotas exclusivas de las columnas: cantidades, subtotales y totales NUMERIC(20,4);
// precios y costos NUMERIC(18,4).
var (
	MaxAmount = decimal.New(1, 16)
	MaxPrice  = decimal.New(1, 14)
)

// HasScale indica si d se guarda sin redondeo con CostScale decimales.
func HasScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(CostScale))
}

// Fits indica si d cabe en la columna acotada por limit, sin perder decimales.
func Fits(d, limit decimal.Decimal) bool {
	return HasScale(d) && d.Abs().LessThan(limit)
}
