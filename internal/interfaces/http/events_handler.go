package http

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/jhoicas/em-inventario/internal/domain/entity"
	"github.com/jhoicas/em-inventario/internal/infrastructure/events"
)

// Nombres de evento SSE.
const (
	eventCatalogChanged     = "catalog-changed"
	eventRequisitionChanged = "requisition-changed"
)

// LedgerSubscriber origen de los cambios del libro.
type LedgerSubscriber interface {
	Subscribe(onChange events.Handler[entity.RequisitionChange]) (unsubscribe func())
}

// CatalogSubscriber origen de las señales de cambio del catálogo.
type CatalogSubscriber interface {
	Subscribe(handler events.Handler[events.Signal]) (unsubscribe func())
}

type sseFrame struct {
	event string
	data  any
}

// EventsHandler retransmite los buses de cambio al navegador como Server-Sent Events.
type EventsHandler struct {
	ledger    LedgerSubscriber
	catalog   CatalogSubscriber
	heartbeat time.Duration
	buffer    int
	log       zerolog.Logger
}

// NewEventsHandler construye el handler.
func NewEventsHandler(ledger LedgerSubscriber, catalog CatalogSubscriber, log zerolog.Logger) *EventsHandler {
	return &EventsHandler{ledger: ledger, catalog: catalog, heartbeat: 15 * time.Second, buffer: 32, log: log}
}

// Stream godoc
// @Summary      Cambios en tiempo real
// @Description  Server-Sent Events: catalog-changed (recargar catálogos) y requisition-changed {op, requisition_id}.
// @Description  Sin repetición: un cliente que se conecta tarde no recibe eventos pasados.
// @Tags         events
// @Security     Bearer
// @Produce      text/event-stream
// @Success      200
// @Router       /api/events [get]
func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	frames, unsubscribe := h.subscribe()

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer unsubscribe()
		ticker := time.NewTicker(h.heartbeat)
		defer ticker.Stop()

		if err := writeComment(w, "conectado"); err != nil {
			return
		}
		for {
			select {
			case f := <-frames:
				if err := writeFrame(w, f); err != nil {
					h.log.Debug().Err(err).Msg("cliente SSE desconectado")
					return
				}
			case <-ticker.C:
				if err := writeComment(w, "ping"); err != nil {
					return
				}
			}
		}
	}))
	return nil
}

// subscribe engancha ambos buses a un canal con buffer. La publicación es síncrona,
// así que un cliente lento pierde eventos en lugar de frenar al publicador.
func (h *EventsHandler) subscribe() (<-chan sseFrame, func()) {
	frames := make(chan sseFrame, h.buffer)
	push := func(f sseFrame) {
		select {
		case frames <- f:
		default:
			h.log.Warn().Str("event", f.event).Msg("cliente SSE saturado, evento descartado")
		}
	}
	offLedger := h.ledger.Subscribe(func(_ context.Context, ch entity.RequisitionChange) {
		push(sseFrame{event: eventRequisitionChanged, data: fiber.Map{"op": ch.Op, "requisition_id": ch.RequisitionID}})
	})
	offCatalog := h.catalog.Subscribe(func(context.Context, events.Signal) {
		push(sseFrame{event: eventCatalogChanged, data: fiber.Map{}})
	})
	return frames, func() {
		offLedger()
		offCatalog()
	}
}

func writeFrame(w *bufio.Writer, f sseFrame) error {
	data, err := json.Marshal(f.data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", f.event, data); err != nil {
		return err
	}
	return w.Flush()
}

func writeComment(w *bufio.Writer, text string) error {
	if _, err := fmt.Fprintf(w, ": %s\n\n", text); err != nil {
		return err
	}
	return w.Flush()
}
