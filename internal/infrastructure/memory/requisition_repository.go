package memory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/jhoicas/em-inventario/internal/domain"
	"github.com/jhoicas/em-inventario/internal/domain/entity"
	"github.com/jhoicas/em-inventario/internal/domain/repository"
)

var _ repository.RequisitionRepository = (*RequisitionRepository)(nil)

// RequisitionRepository libro de requisiciones en memoria. La secuencia de referencias
// es un contador atómico, equivalente a la secuencia de PostgreSQL.
type RequisitionRepository struct {
	mu   sync.RWMutex
	seq  atomic.Int64
	byID map[string]*entity.Requisition
}

// NewRequisitionRepository construye el libro vacío.
func NewRequisitionRepository() *RequisitionRepository {
	return &RequisitionRepository{byID: make(map[string]*entity.Requisition)}
}

// NextSequence incrementa y devuelve el contador.
func (r *RequisitionRepository) NextSequence(_ context.Context) (int64, error) {
	return r.seq.Add(1), nil
}

// Create guarda una copia de la requisición.
func (r *RequisitionRepository) Create(_ context.Context, req *entity.Requisition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[req.ID]; exists {
		return domain.ErrDuplicate
	}
	for _, existing := range r.byID {
		if existing.ReferenceNumber == req.ReferenceNumber {
			return domain.ErrDuplicate
		}
	}
	r.byID[req.ID] = clone(req)
	return nil
}

// GetByID devuelve una copia o nil.
func (r *RequisitionRepository) GetByID(_ context.Context, id string) (*entity.Requisition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return clone(req), nil
}

// Update sobrescribe la cabecera conservando las líneas guardadas.
func (r *RequisitionRepository) Update(_ context.Context, req *entity.Requisition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[req.ID]
	if !ok {
		return domain.ErrNotFound
	}
	updated := clone(req)
	updated.Lines = existing.Lines
	r.byID[req.ID] = updated
	return nil
}

// SaveLineOutcomes actualiza los resultados de conciliación por número de línea.
func (r *RequisitionRepository) SaveLineOutcomes(_ context.Context, requisitionID string, lines []entity.RequisitionLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[requisitionID]
	if !ok {
		return domain.ErrNotFound
	}
	for _, l := range lines {
		for i := range existing.Lines {
			if existing.Lines[i].LineNo == l.LineNo {
				existing.Lines[i].Outcome = l.Outcome
				existing.Lines[i].OutcomeReason = l.OutcomeReason
				existing.Lines[i].CatalogItemID = l.CatalogItemID
			}
		}
	}
	return nil
}

// Delete elimina la requisición.
func (r *RequisitionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// List aplica el filtro y ordena por fecha de creación descendente.
func (r *RequisitionRepository) List(_ context.Context, f entity.RequisitionFilter) ([]*entity.Requisition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.Requisition, 0, len(r.byID))
	for _, req := range r.byID {
		if f.Matches(req) {
			out = append(out, clone(req))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ReferenceNumber > out[j].ReferenceNumber
	})
	return out, nil
}

func clone(req *entity.Requisition) *entity.Requisition {
	c := *req
	c.Lines = append([]entity.RequisitionLine(nil), req.Lines...)
	if req.ExpectedReturnAt != nil {
		t := *req.ExpectedReturnAt
		c.ExpectedReturnAt = &t
	}
	return &c
}
