package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jhoicas/em-inventario/internal/domain/entity"
	"github.com/jhoicas/em-inventario/internal/infrastructure/events"
	"github.com/jhoicas/em-inventario/pkg/metrics"
)

// LedgerPublisher recibe los cambios del libro hechos por otras instancias.
type LedgerPublisher interface {
	Publish(ctx context.Context, change entity.RequisitionChange) int
}

// CatalogPublisher recibe la señal de cambio de catálogo hecha por otras instancias.
type CatalogPublisher interface {
	Publish(ctx context.Context, s events.Signal) int
}

// change payload que emite em_notify_change().
type change struct {
	Table    string `json:"table"`
	Op       string `json:"op"`
	ID       string `json:"id"`
	Category string `json:"category"`
	Origin   string `json:"origin"`
}

// Listener reenvía a los buses locales los NOTIFY de otras instancias.
type Listener struct {
	pool       *pgxpool.Pool
	instanceID string
	ledger     LedgerPublisher
	catalog    CatalogPublisher
	log        zerolog.Logger
	retryEvery time.Duration
}

// NewListener construye el listener. instanceID debe ser el mismo application_name del pool.
func NewListener(pool *pgxpool.Pool, instanceID string, ledger LedgerPublisher, catalog CatalogPublisher, log zerolog.Logger) *Listener {
	return &Listener{
		pool:       pool,
		instanceID: instanceID,
		ledger:     ledger,
		catalog:    catalog,
		log:        log.With().Str("component", "pg_listener").Logger(),
		retryEvery: 5 * time.Second,
	}
}

// Run escucha hasta que ctx se cancele. Si la conexión cae, reintenta.
func (l *Listener) Run(ctx context.Context) {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return
		}
		l.log.Warn().Err(err).Dur("retry_in", l.retryEvery).Msg("LISTEN interrumpido")
		select {
		case <-ctx.Done():
			return
		case <-time.After(l.retryEvery):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+NotifyChannel); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	l.log.Info().Str("channel", NotifyChannel).Msg("escuchando cambios remotos")

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		l.dispatch(ctx, n.Payload)
	}
}

func (l *Listener) dispatch(ctx context.Context, payload string) {
	c, remote, err := decodeChange(payload, l.instanceID)
	if err != nil {
		l.log.Error().Err(err).Str("payload", payload).Msg("notificación inválida")
		return
	}
	if !remote {
		return
	}
	metrics.RemoteChanges.Inc()

	switch c.Table {
	case "requisitions":
		l.ledger.Publish(ctx, entity.RequisitionChange{Op: ledgerOp(c.Op), RequisitionID: c.ID})
	case "catalog_items":
		l.catalog.Publish(ctx, events.Signal{})
	default:
		l.log.Debug().Str("table", c.Table).Msg("tabla sin bus")
	}
}

// decodeChange interpreta el payload; remote es false cuando el cambio lo hizo esta instancia.
func decodeChange(payload, instanceID string) (change, bool, error) {
	var c change
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return change{}, false, err
	}
	if c.Table == "" || c.ID == "" {
		return change{}, false, errors.New("payload sin tabla o id")
	}
	return c, c.Origin != instanceID, nil
}

func ledgerOp(op string) string {
	switch op {
	case "insert":
		return entity.ChangeCreate
	case "delete":
		return entity.ChangeDelete
	default:
		return entity.ChangeUpdate
	}
}
