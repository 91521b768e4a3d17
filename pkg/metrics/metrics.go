// Package metrics registra los contadores Prometheus del servicio en el registro por defecto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "em_inventario"

var (
	// ReconciliationTotal líneas conciliadas por resultado (applied, miss, failed) y categoría.
	ReconciliationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconciliation_total",
		Help:      "Líneas de requisición conciliadas contra el catálogo, por resultado y categoría.",
	}, []string{"outcome", "category"})

	// ChangesPublished publicaciones en los buses de cambio.
	ChangesPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "changes_published_total",
		Help:      "Notificaciones de cambio publicadas, por bus.",
	}, []string{"bus"})

	// RequisitionsCreated requisiciones registradas por tipo.
	RequisitionsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requisitions_created_total",
		Help:      "Requisiciones registradas en el libro, por tipo.",
	}, []string{"type"})

	// RemoteChanges notificaciones recibidas de otras instancias vía LISTEN.
	RemoteChanges = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "remote_changes_total",
		Help:      "Cambios del libro recibidos desde otras instancias.",
	})
)
