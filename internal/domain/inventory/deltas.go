package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-inventario/internal/domain/entity"
)

// Delta cambio de cantidad sobre una clave de existencias.
type Delta struct {
	Key      entity.StockKey
	Quantity decimal.Decimal
}

// DocumentDeltas devuelve el efecto en existencias de un documento:
// entrada +q, salida -q. Una venta no mueve stock por sí misma (lo hace su salida acompañante).
func DocumentDeltas(doc *entity.Document) []Delta {
	var sign decimal.Decimal
	switch doc.Kind {
	case entity.DocumentReceipt:
		sign = decimal.NewFromInt(1)
	case entity.DocumentIssue:
		sign = decimal.NewFromInt(-1)
	default:
		return nil
	}
	out := make([]Delta, 0, len(doc.Lines))
	for _, l := range doc.Lines {
		if l.Kind != entity.LineProduct {
			continue
		}
		out = append(out, Delta{
			Key:      l.StockKey(doc.TenantID, doc.LocationID),
			Quantity: l.Quantity.Mul(sign),
		})
	}
	return out
}

// Reverse invierte el signo de cada delta.
func Reverse(deltas []Delta) []Delta {
	out := make([]Delta, len(deltas))
	for i, d := range deltas {
		out[i] = Delta{Key: d.Key, Quantity: d.Quantity.Neg()}
	}
	return out
}

// Net suma los deltas por clave, descarta los que quedan en cero y ordena por clave.
func Net(deltas []Delta) []Delta {
	sums := make(map[entity.StockKey]decimal.Decimal, len(deltas))
	for _, d := range deltas {
		sums[d.Key] = sums[d.Key].Add(d.Quantity)
	}
	out := make([]Delta, 0, len(sums))
	for k, q := range sums {
		if q.IsZero() {
			continue
		}
		out = append(out, Delta{Key: k, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.Less(out[j].Key) })
	return out
}

// SortedKeys devuelve las claves sin repetir en orden de bloqueo.
func SortedKeys(keys []entity.StockKey) []entity.StockKey {
	seen := make(map[entity.StockKey]struct{}, len(keys))
	out := make([]entity.StockKey, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
