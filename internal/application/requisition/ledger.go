// Package requisition contiene el libro de requisiciones (entregas, devoluciones y consumos)
// y la rutina que concilia cada línea registrada contra el catálogo de su categoría.
package requisition

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/em-inventario/internal/application/dto"
	"github.com/jhoicas/em-inventario/internal/domain"
	"github.com/jhoicas/em-inventario/internal/domain/entity"
	"github.com/jhoicas/em-inventario/internal/domain/repository"
	"github.com/jhoicas/em-inventario/internal/infrastructure/events"
	"github.com/jhoicas/em-inventario/pkg/metrics"
)

// ChangeBus difunde los cambios del libro a sus suscriptores.
type ChangeBus interface {
	Publish(ctx context.Context, change entity.RequisitionChange) int
	Subscribe(handler events.Handler[entity.RequisitionChange]) func()
}

// Options comportamiento configurable del libro.
type Options struct {
	Policy       Policy
	EnforceStock bool // rechaza issue/consume que dejarían existencias negativas
}

// LedgerUseCase casos de uso del libro de requisiciones.
type LedgerUseCase struct {
	repo       repository.RequisitionRepository
	reconciler *Reconciler
	changes    ChangeBus
	opts       Options
	log        zerolog.Logger
	now        func() time.Time
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	repo repository.RequisitionRepository,
	reconciler *Reconciler,
	changes ChangeBus,
	opts Options,
	log zerolog.Logger,
) *LedgerUseCase {
	if opts.Policy == "" {
		opts.Policy = PolicyBestEffort
	}
	return &LedgerUseCase{
		repo:       repo,
		reconciler: reconciler,
		changes:    changes,
		opts:       opts,
		log:        log.With().Str("component", "ledger").Logger(),
		now:        time.Now,
	}
}

// Create valida, asigna número de referencia, guarda cabecera y líneas y luego concilia
// cada línea contra el catálogo, en orden. Una línea fallida no detiene las siguientes.
func (uc *LedgerUseCase) Create(ctx context.Context, in dto.CreateRequisitionRequest, createdBy string) (*dto.CreateRequisitionResponse, error) {
	req, err := uc.buildRequisition(in)
	if err != nil {
		return nil, err
	}
	if err := uc.precheck(ctx, req); err != nil {
		return nil, err
	}

	seq, err := uc.repo.NextSequence(ctx)
	if err != nil {
		return nil, fmt.Errorf("obtener secuencia de referencia: %w", err)
	}
	now := uc.now()
	req.ID = uuid.New().String()
	req.ReferenceNumber = entity.FormatReference(seq)
	req.CreatedBy = createdBy
	req.CreatedAt = now
	req.LastUpdated = now
	if err := uc.repo.Create(ctx, req); err != nil {
		return nil, err
	}
	uc.log.Info().Str("reference", req.ReferenceNumber).Str("type", string(req.RequisitionType)).
		Int("lines", len(req.Lines)).Msg("requisición registrada")
	metrics.RequisitionsCreated.WithLabelValues(string(req.RequisitionType)).Inc()

	results := make([]dto.ReconciliationResult, 0, len(req.Lines))
	for i := range req.Lines {
		if err := ctx.Err(); err != nil {
			req.Lines[i].Outcome = entity.OutcomeFailed
			req.Lines[i].OutcomeReason = err.Error()
			results = append(results, toReconciliationResult(Result{
				LineNo: req.Lines[i].LineNo, Category: req.Lines[i].ItemType, Outcome: entity.OutcomeFailed, Err: err,
			}))
			continue
		}
		res := uc.reconciler.Reconcile(ctx, req.ReferenceNumber, req.Lines[i], req.RequisitionType)
		req.Lines[i].Outcome = res.Outcome
		if res.Err != nil {
			req.Lines[i].OutcomeReason = res.Err.Error()
		}
		if res.Adjustment != nil {
			req.Lines[i].CatalogItemID = res.Adjustment.Item.ID
		}
		results = append(results, toReconciliationResult(res))
	}
	// Sin ctx del request: la requisición ya existe y sus resultados deben quedar guardados.
	if err := uc.repo.SaveLineOutcomes(context.WithoutCancel(ctx), req.ID, req.Lines); err != nil {
		uc.log.Error().Err(err).Str("reference", req.ReferenceNumber).Msg("no se pudieron guardar los resultados de conciliación")
	}

	uc.changes.Publish(ctx, entity.RequisitionChange{Op: entity.ChangeCreate, RequisitionID: req.ID})
	return &dto.CreateRequisitionResponse{
		Requisition:    ToRequisitionResponse(req, now),
		Reconciliation: results,
	}, nil
}

// buildRequisition normaliza y valida la entrada sin tocar almacenamiento.
func (uc *LedgerUseCase) buildRequisition(in dto.CreateRequisitionRequest) (*entity.Requisition, error) {
	t := entity.RequisitionType(strings.ToLower(strings.TrimSpace(in.RequisitionType)))
	if !t.Valid() {
		return nil, fmt.Errorf("%w: tipo de requisición %q", domain.ErrInvalidInput, in.RequisitionType)
	}
	itemType := entity.Category(strings.TrimSpace(in.ItemType))
	if !itemType.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, in.ItemType)
	}
	if strings.TrimSpace(in.IssuedTo) == "" {
		return nil, fmt.Errorf("%w: issued_to es obligatorio", domain.ErrInvalidInput)
	}
	status := entity.StatusPending
	if in.Status != "" {
		s, _, err := entity.ParseStatus(in.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		status = s
	}

	lineIn := in.Items
	if len(lineIn) == 0 {
		lineIn = []dto.RequisitionLineRequest{{ItemType: in.ItemType, ItemName: in.ItemName, ItemCode: in.ItemCode, Quantity: in.Quantity}}
	}
	lines := make([]entity.RequisitionLine, 0, len(lineIn))
	for i, l := range lineIn {
		lt := itemType
		if strings.TrimSpace(l.ItemType) != "" {
			lt = entity.Category(strings.TrimSpace(l.ItemType))
			if !lt.Valid() {
				return nil, fmt.Errorf("%w: línea %d, %q", domain.ErrUnknownCategory, i+1, l.ItemType)
			}
		}
		line := entity.RequisitionLine{
			LineNo:   i + 1,
			ItemType: lt,
			ItemName: strings.TrimSpace(l.ItemName),
			ItemCode: strings.TrimSpace(l.ItemCode),
			Quantity: l.Quantity,
		}
		if line.ItemName == "" && line.ItemCode == "" {
			return nil, fmt.Errorf("%w: línea %d sin ítem", domain.ErrInvalidInput, line.LineNo)
		}
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: línea %d con cantidad %d", domain.ErrInvalidInput, line.LineNo, line.Quantity)
		}
		lines = append(lines, line)
	}

	return &entity.Requisition{
		RequisitionType:  t,
		ItemType:         itemType,
		Lines:            lines,
		IssuedTo:         strings.TrimSpace(in.IssuedTo),
		Location:         strings.TrimSpace(in.Location),
		Department:       strings.TrimSpace(in.Department),
		Remarks:          in.Remarks,
		Status:           status,
		ExpectedReturnAt: in.ExpectedReturnAt,
	}, nil
}

// precheck resuelve las líneas antes de escribir: en modo estricto todas deben existir,
// y con EnforceStock la demanda agregada por ítem no puede superar la existencia.
func (uc *LedgerUseCase) precheck(ctx context.Context, req *entity.Requisition) error {
	strict := uc.opts.Policy == PolicyStrict
	enforce := uc.opts.EnforceStock && req.RequisitionType.Withdraws()
	if !strict && !enforce {
		return nil
	}
	type target struct {
		item   *entity.CatalogItem
		demand int
	}
	targets := make(map[string]*target)
	for _, line := range req.Lines {
		item, err := uc.reconciler.Locate(ctx, line)
		if err != nil {
			if strict {
				return err
			}
			if errors.Is(err, domain.ErrReconciliationMiss) || errors.Is(err, domain.ErrUnknownCategory) {
				continue
			}
			return err
		}
		key := string(item.Category) + "/" + item.ID
		tg, ok := targets[key]
		if !ok {
			tg = &target{item: item}
			targets[key] = tg
		}
		tg.demand += line.Quantity
	}
	if !enforce {
		return nil
	}
	for _, tg := range targets {
		if tg.item.Quantity < tg.demand {
			return fmt.Errorf("%w: %s tiene %d, se solicitan %d", domain.ErrInsufficientStock, tg.item.Name, tg.item.Quantity, tg.demand)
		}
	}
	return nil
}

// Update aplica una actualización parcial. rejected y completed son terminales.
func (uc *LedgerUseCase) Update(ctx context.Context, id string, in dto.UpdateRequisitionRequest) (*dto.RequisitionResponse, error) {
	req, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	if in.Status != nil {
		status, legacy, err := entity.ParseStatus(*in.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		if req.Status.Terminal() && status != req.Status {
			return nil, fmt.Errorf("%w: la requisición %s ya está %s", domain.ErrConflict, req.ReferenceNumber, req.Status)
		}
		if legacy {
			uc.log.Debug().Str("reference", req.ReferenceNumber).Msg("estado heredado overdue guardado como approved")
		}
		req.Status = status
	}
	if in.IssuedTo != nil {
		if strings.TrimSpace(*in.IssuedTo) == "" {
			return nil, fmt.Errorf("%w: issued_to es obligatorio", domain.ErrInvalidInput)
		}
		req.IssuedTo = strings.TrimSpace(*in.IssuedTo)
	}
	if in.Location != nil {
		req.Location = strings.TrimSpace(*in.Location)
	}
	if in.Department != nil {
		req.Department = strings.TrimSpace(*in.Department)
	}
	if in.Remarks != nil {
		req.Remarks = *in.Remarks
	}
	if in.ExpectedReturnAt != nil {
		req.ExpectedReturnAt = in.ExpectedReturnAt
	}
	now := uc.now()
	req.LastUpdated = now
	if err := uc.repo.Update(ctx, req); err != nil {
		return nil, err
	}
	uc.changes.Publish(ctx, entity.RequisitionChange{Op: entity.ChangeUpdate, RequisitionID: req.ID})
	resp := ToRequisitionResponse(req, now)
	return &resp, nil
}

// Delete elimina la requisición. Los ajustes de cantidad ya aplicados no se revierten.
func (uc *LedgerUseCase) Delete(ctx context.Context, id string) error {
	req, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if req == nil {
		return domain.ErrNotFound
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	applied := 0
	for _, l := range req.Lines {
		if l.Outcome == entity.OutcomeApplied {
			applied++
		}
	}
	uc.log.Warn().Str("reference", req.ReferenceNumber).Int("applied_lines", applied).
		Msg("requisición eliminada; las cantidades del catálogo no se revierten")
	uc.changes.Publish(ctx, entity.RequisitionChange{Op: entity.ChangeDelete, RequisitionID: id})
	return nil
}

// Get obtiene una requisición; nil si no existe.
func (uc *LedgerUseCase) Get(ctx context.Context, id string) (*dto.RequisitionResponse, error) {
	req, err := uc.repo.GetByID(ctx, id)
	if err != nil || req == nil {
		return nil, err
	}
	resp := ToRequisitionResponse(req, uc.now())
	return &resp, nil
}

// GetEntity obtiene la entidad; la usan los generadores de documentos.
func (uc *LedgerUseCase) GetEntity(ctx context.Context, id string) (*entity.Requisition, error) {
	req, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	return req, nil
}

// List devuelve las requisiciones que cumplen el filtro, más recientes primero.
func (uc *LedgerUseCase) List(ctx context.Context, in dto.RequisitionFilterRequest) (*dto.RequisitionListResponse, error) {
	now := uc.now()
	f, err := ParseFilter(in, now)
	if err != nil {
		return nil, err
	}
	list, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.RequisitionResponse, 0, len(list))
	for _, r := range list {
		items = append(items, ToRequisitionResponse(r, now))
	}
	return &dto.RequisitionListResponse{Items: items, Total: len(items)}, nil
}

// Subscribe registra onChange para cada alta, edición o baja del libro.
func (uc *LedgerUseCase) Subscribe(onChange events.Handler[entity.RequisitionChange]) (unsubscribe func()) {
	return uc.changes.Subscribe(onChange)
}

// ParseFilter convierte los parámetros de búsqueda al filtro de dominio.
func ParseFilter(in dto.RequisitionFilterRequest, now time.Time) (entity.RequisitionFilter, error) {
	f := entity.RequisitionFilter{
		Department:  strings.TrimSpace(in.Department),
		Search:      in.Q,
		OverdueOnly: in.Overdue,
		Now:         now,
	}
	if in.Type != "" {
		f.Type = entity.RequisitionType(strings.ToLower(in.Type))
		if !f.Type.Valid() {
			return f, fmt.Errorf("%w: tipo %q", domain.ErrInvalidInput, in.Type)
		}
	}
	if in.Status != "" {
		status, legacy, err := entity.ParseStatus(in.Status)
		if err != nil {
			return f, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		if legacy {
			// "overdue" en el filtro significa entregas vencidas.
			f.OverdueOnly = true
		} else {
			f.Status = status
		}
	}
	if in.ItemType != "" {
		f.ItemType = entity.Category(in.ItemType)
		if !f.ItemType.Valid() {
			return f, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, in.ItemType)
		}
	}
	var err error
	if f.From, err = parseDate(in.From, false); err != nil {
		return f, err
	}
	if f.To, err = parseDate(in.To, true); err != nil {
		return f, err
	}
	return f, nil
}

// parseDate acepta RFC3339 o YYYY-MM-DD; endOfDay extiende una fecha sin hora hasta el final del día.
func parseDate(s string, endOfDay bool) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha %q", domain.ErrInvalidInput, s)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// ToRequisitionResponse convierte la entidad a su salida HTTP; now determina el atraso.
func ToRequisitionResponse(r *entity.Requisition, now time.Time) dto.RequisitionResponse {
	lines := make([]dto.RequisitionLineResponse, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, dto.RequisitionLineResponse{
			LineNo:        l.LineNo,
			ItemType:      string(l.ItemType),
			ItemName:      l.ItemName,
			ItemCode:      l.ItemCode,
			Quantity:      l.Quantity,
			Outcome:       string(l.Outcome),
			OutcomeReason: l.OutcomeReason,
			CatalogItemID: l.CatalogItemID,
		})
	}
	resp := dto.RequisitionResponse{
		ID:               r.ID,
		ReferenceNumber:  r.ReferenceNumber,
		RequisitionType:  string(r.RequisitionType),
		ItemType:         string(r.ItemType),
		Items:            lines,
		IssuedTo:         r.IssuedTo,
		Location:         r.Location,
		Department:       r.Department,
		Remarks:          r.Remarks,
		Status:           string(r.Status),
		Overdue:          r.Overdue(now),
		ExpectedReturnAt: r.ExpectedReturnAt,
		CreatedBy:        r.CreatedBy,
		CreatedAt:        r.CreatedAt,
		LastUpdated:      r.LastUpdated,
	}
	if len(r.Lines) > 0 {
		resp.ItemName = r.Lines[0].ItemName
		resp.Quantity = r.Lines[0].Quantity
	}
	return resp
}

func toReconciliationResult(res Result) dto.ReconciliationResult {
	out := dto.ReconciliationResult{
		LineNo:   res.LineNo,
		Outcome:  string(res.Outcome),
		Category: string(res.Category),
	}
	if res.Err != nil {
		out.Reason = res.Err.Error()
	}
	if adj := res.Adjustment; adj != nil {
		prev, qty := adj.Previous, adj.Item.Quantity
		out.ItemID = adj.Item.ID
		out.Previous = &prev
		out.Quantity = &qty
		out.Candidates = adj.Candidates
	}
	return out
}
