package repository

import (
	"context"

	"github.com/jhoicas/em-inventario/internal/domain/entity"
)

// RequisitionRepository define el puerto de persistencia del libro de requisiciones.
type RequisitionRepository interface {
	// NextSequence entrega el siguiente valor de la secuencia del servidor para el número de referencia.
	NextSequence(ctx context.Context) (int64, error)
	// Create persiste la cabecera y sus líneas de forma atómica.
	Create(ctx context.Context, r *entity.Requisition) error
	GetByID(ctx context.Context, id string) (*entity.Requisition, error)
	// Update sobrescribe los campos editables de la cabecera.
	Update(ctx context.Context, r *entity.Requisition) error
	// SaveLineOutcomes guarda el resultado de conciliación de cada línea.
	SaveLineOutcomes(ctx context.Context, requisitionID string, lines []entity.RequisitionLine) error
	// Delete elimina la requisición; devuelve domain.ErrNotFound si no existe.
	Delete(ctx context.Context, id string) error
	// List devuelve las requisiciones que cumplen el filtro, más recientes primero.
	List(ctx context.Context, f entity.RequisitionFilter) ([]*entity.Requisition, error)
}
