package inventory

import "github.com/shopspring/decimal"

// CostScale decimales con los que se expresa un costo de referencia.
const CostScale = 4

// AverageUnitCost implementa el costo de referencia (servicio de dominio):
// media aritmética de los precios unitarios de entrada, sin ponderar por cantidad.
// Sin precios devuelve 0.
func AverageUnitCost(prices []decimal.Decimal) decimal.Decimal {
	if len(prices) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, p := range prices {
		sum = sum.Add(p)
	}
	return sum.Div(decimal.NewFromInt(int64(len(prices)))).Round(CostScale)
}
