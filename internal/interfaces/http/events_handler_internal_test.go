package http

import (
	"bufio"
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/em-inventario/internal/domain/entity"
	"github.com/jhoicas/em-inventario/internal/infrastructure/events"
)

func TestEventsHandler_SubscribeReenviaAmbosBuses(t *testing.T) {
	ledger := events.NewBus[entity.RequisitionChange]("ledger", zerolog.Nop())
	catalog := events.NewBus[events.Signal]("catalog", zerolog.Nop())
	h := NewEventsHandler(ledger, catalog, zerolog.Nop())

	frames, unsubscribe := h.subscribe()
	ctx := context.Background()
	ledger.Publish(ctx, entity.RequisitionChange{Op: entity.ChangeCreate, RequisitionID: "r1"})
	catalog.Publish(ctx, events.Signal{})

	require.Len(t, frames, 2)
	assert.Equal(t, eventRequisitionChanged, (<-frames).event)
	assert.Equal(t, eventCatalogChanged, (<-frames).event)

	unsubscribe()
	assert.Zero(t, ledger.Len())
	assert.Zero(t, catalog.Len())
}

func TestEventsHandler_ClienteLentoNoBloquea(t *testing.T) {
	catalog := events.NewBus[events.Signal]("catalog", zerolog.Nop())
	h := NewEventsHandler(events.NewBus[entity.RequisitionChange]("ledger", zerolog.Nop()), catalog, zerolog.Nop())
	h.buffer = 1

	frames, unsubscribe := h.subscribe()
	defer unsubscribe()
	for i := 0; i < 5; i++ {
		catalog.Publish(context.Background(), events.Signal{})
	}
	assert.Len(t, frames, 1)
}

func TestWriteFrame_FormatoSSE(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	require.NoError(t, writeFrame(w, sseFrame{event: eventRequisitionChanged, data: map[string]string{"op": "delete"}}))
	assert.Equal(t, "event: requisition-changed\ndata: {\"op\":\"delete\"}\n\n", buf.String())

	buf.Reset()
	require.NoError(t, writeComment(w, "ping"))
	assert.Equal(t, ": ping\n\n", buf.String())
}
