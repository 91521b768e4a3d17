// Package events implementa el bus de notificaciones de cambio en proceso.
//
// Reemplaza la señal global del navegador: se construye en main, se inyecta en quien lo necesite
// y se cierra al apagar. La entrega es síncrona, en orden de suscripción y at-most-once:
// un suscriptor que llega tarde no recibe eventos pasados.
package events

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jhoicas/em-inventario/pkg/metrics"
)

// Signal evento sin carga útil: "algo cambió, recargue".
type Signal struct{}

// Handler recibe un evento publicado.
type Handler[T any] func(ctx context.Context, event T)

type subscription[T any] struct {
	id      uint64
	handler Handler[T]
}

// Bus difusión uno-a-muchos de eventos de tipo T.
type Bus[T any] struct {
	mu     sync.RWMutex
	subs   []subscription[T]
	nextID uint64
	closed bool
	name   string
	log    zerolog.Logger
}

// NewBus construye un bus vacío. name identifica el bus en los logs.
func NewBus[T any](name string, log zerolog.Logger) *Bus[T] {
	return &Bus[T]{name: name, log: log.With().Str("bus", name).Logger()}
}

// Subscribe registra handler y devuelve la función para darlo de baja (idempotente).
func (b *Bus[T]) Subscribe(handler Handler[T]) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return func() {}
	}
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription[T]{id: id, handler: handler})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus[T]) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish entrega event a los suscriptores vigentes, en orden de suscripción, y retorna
// cuando todos terminaron. Un handler que entra en pánico se registra y no impide a los siguientes.
// Devuelve cuántos suscriptores recibieron el evento.
func (b *Bus[T]) Publish(ctx context.Context, event T) int {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return 0
	}
	snapshot := make([]subscription[T], len(b.subs))
	copy(snapshot, b.subs)
	b.mu.RUnlock()

	metrics.ChangesPublished.WithLabelValues(b.name).Inc()
	for _, s := range snapshot {
		b.deliver(ctx, s, event)
	}
	return len(snapshot)
}

func (b *Bus[T]) deliver(ctx context.Context, s subscription[T], event T) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Interface("panic", r).Uint64("subscriber", s.id).Msg("handler de evento falló")
		}
	}()
	s.handler(ctx, event)
}

// Len devuelve el número de suscriptores vigentes.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close da de baja a todos los suscriptores; publicaciones posteriores no se entregan.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = nil
}
