package requisition

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	appcatalog "github.com/jhoicas/em-inventario/internal/application/catalog"
	"github.com/jhoicas/em-inventario/internal/domain"
	"github.com/jhoicas/em-inventario/internal/domain/catalog"
	"github.com/jhoicas/em-inventario/internal/domain/entity"
	"github.com/jhoicas/em-inventario/internal/infrastructure/events"
	"github.com/jhoicas/em-inventario/pkg/metrics"
)

// Policy qué hacer cuando una línea no encuentra su ítem en el catálogo.
type Policy string

const (
	// PolicyBestEffort guarda la requisición igual y reporta la línea como miss.
	PolicyBestEffort Policy = "best_effort"
	// PolicyStrict rechaza la requisición completa antes de escribir nada.
	PolicyStrict Policy = "strict"
)

// ParsePolicy valida el valor de configuración; vacío equivale a best_effort.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", PolicyBestEffort:
		return PolicyBestEffort, nil
	case PolicyStrict:
		return PolicyStrict, nil
	default:
		return "", fmt.Errorf("política de conciliación desconocida %q", s)
	}
}

// Result resultado explícito de conciliar una línea.
type Result struct {
	LineNo     int
	Category   entity.Category
	Outcome    entity.ReconcileOutcome
	Adjustment *catalog.Adjustment // solo cuando Outcome == applied
	Err        error               // causa de miss o failed
}

// Reconciler aplica al catálogo el efecto de cantidad de cada línea registrada en el libro.
type Reconciler struct {
	registry *appcatalog.Registry
	notifier appcatalog.Notifier
	log      zerolog.Logger
}

// NewReconciler construye la rutina de conciliación.
func NewReconciler(registry *appcatalog.Registry, notifier appcatalog.Notifier, log zerolog.Logger) *Reconciler {
	return &Reconciler{registry: registry, notifier: notifier, log: log.With().Str("component", "reconciler").Logger()}
}

// Reconcile ajusta la cantidad del primer ítem que coincide con la línea:
// issue y consume restan, return suma. Nunca devuelve error; el resultado lo describe.
func (r *Reconciler) Reconcile(ctx context.Context, reference string, line entity.RequisitionLine, t entity.RequisitionType) Result {
	res := Result{LineNo: line.LineNo, Category: line.ItemType}
	delta := t.Delta(line.Quantity)
	ev := func(e *zerolog.Event) *zerolog.Event {
		return e.Str("reference", reference).Int("line", line.LineNo).
			Str("category", string(line.ItemType)).Str("item", line.MatchKey()).Int("delta", delta)
	}

	store, err := r.registry.Store(line.ItemType)
	if err != nil {
		res.Outcome, res.Err = entity.OutcomeFailed, err
		ev(r.log.Error()).Err(err).Str("outcome", string(res.Outcome)).Msg("conciliación fallida: categoría sin store")
		r.count(res)
		return res
	}

	adj, err := store.AdjustQuantity(ctx, catalog.NewMatcher(line.MatchKey()), delta)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		res.Outcome, res.Err = entity.OutcomeMiss, fmt.Errorf("%w: %q en %s", domain.ErrReconciliationMiss, line.MatchKey(), line.ItemType)
		ev(r.log.Warn()).Str("outcome", string(res.Outcome)).Msg("ningún ítem del catálogo coincide; catálogo sin cambios")
	case err != nil:
		res.Outcome, res.Err = entity.OutcomeFailed, err
		ev(r.log.Error()).Err(err).Str("outcome", string(res.Outcome)).Msg("conciliación fallida")
	default:
		res.Outcome, res.Adjustment = entity.OutcomeApplied, adj
		if adj.Candidates > 1 {
			ev(r.log.Warn()).Int("candidates", adj.Candidates).Str("item_id", adj.Item.ID).
				Msg("varios ítems coinciden; se ajustó el primero")
		}
		ev(r.log.Info()).Str("outcome", string(res.Outcome)).Str("item_id", adj.Item.ID).
			Int("previous", adj.Previous).Int("quantity", adj.Item.Quantity).Msg("cantidad conciliada")
		r.notifier.Publish(ctx, events.Signal{})
	}
	r.count(res)
	return res
}

// Locate busca sin modificar el ítem que Reconcile ajustaría.
// Devuelve domain.ErrUnknownCategory o domain.ErrReconciliationMiss si no lo hay.
func (r *Reconciler) Locate(ctx context.Context, line entity.RequisitionLine) (*entity.CatalogItem, error) {
	store, err := r.registry.Store(line.ItemType)
	if err != nil {
		return nil, err
	}
	item, err := store.Find(ctx, catalog.NewMatcher(line.MatchKey()))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: línea %d, %q en %s", domain.ErrReconciliationMiss, line.LineNo, line.MatchKey(), line.ItemType)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *Reconciler) count(res Result) {
	metrics.ReconciliationTotal.WithLabelValues(string(res.Outcome), string(res.Category)).Inc()
}
