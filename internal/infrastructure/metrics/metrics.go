package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Contadores Prometheus del módulo de inventario, expuestos en /metrics.
var (
	movementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_movements_total",
		Help: "Movimientos de inventario confirmados, por tipo.",
	}, []string{"type"})

	insufficientStockTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_insufficient_rejections_total",
		Help: "Salidas rechazadas por stock insuficiente.",
	})
)

// MovementRecorded registra un movimiento confirmado del tipo dado.
func MovementRecorded(movementType string) {
	movementsTotal.WithLabelValues(movementType).Inc()
}

// InsufficientStockRejected registra un rechazo por stock insuficiente.
func InsufficientStockRejected() {
	insufficientStockTotal.Inc()
}
