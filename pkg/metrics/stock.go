package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Resultados de una validación de stock.
const (
	ResultAccepted = "accepted"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Tipos de chequeo del validador.
const (
	CheckMovement     = "movement"
	CheckAvailability = "availability"
)

// StockMetrics contadores del motor de stock. Un *StockMetrics nil es válido y no registra nada.
type StockMetrics struct {
	validations *prometheus.CounterVec
	mutations   *prometheus.CounterVec
}

// NewStockMetrics registra las métricas en el registerer dado.
func NewStockMetrics(reg prometheus.Registerer) *StockMetrics {
	if reg == nil {
		return &StockMetrics{}
	}
	validations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_validations_total",
		Help: "Validaciones de stock por tipo de chequeo y resultado.",
	}, []string{"check", "result"})
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_mutations_total",
		Help: "Mutaciones confirmadas por entidad y operación.",
	}, []string{"entity", "operation"})
	reg.MustRegister(validations, mutations)
	return &StockMetrics{validations: validations, mutations: mutations}
}

// ObserveValidation cuenta una validación.
func (m *StockMetrics) ObserveValidation(check, result string) {
	if m == nil || m.validations == nil {
		return
	}
	m.validations.WithLabelValues(normalizeLabel(check), normalizeLabel(result)).Inc()
}

// IncMutation cuenta una mutación confirmada (create, update, delete).
func (m *StockMetrics) IncMutation(entity, operation string) {
	if m == nil || m.mutations == nil {
		return
	}
	m.mutations.WithLabelValues(normalizeLabel(entity), normalizeLabel(operation)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
