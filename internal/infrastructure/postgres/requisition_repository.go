package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/em-inventario/internal/domain"
	"github.com/jhoicas/em-inventario/internal/domain/entity"
	"github.com/jhoicas/em-inventario/internal/domain/repository"
)

var _ repository.RequisitionRepository = (*RequisitionRepo)(nil)

const requisitionColumns = `r.id, r.reference_number, r.requisition_type, r.item_type, r.issued_to, r.location,
	r.department, r.remarks, r.status, r.expected_return_at, r.created_by, r.created_at, r.last_updated`

// RequisitionRepo libro de requisiciones sobre requisitions + requisition_items.
type RequisitionRepo struct {
	q Querier
}

// NewRequisitionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRequisitionRepository(q Querier) *RequisitionRepo {
	return &RequisitionRepo{q: q}
}

// NextSequence toma el siguiente valor de requisition_ref_seq. Los valores consumidos
// por requisiciones que luego fallan no se reutilizan.
func (r *RequisitionRepo) NextSequence(ctx context.Context) (int64, error) {
	var seq int64
	if err := r.q.QueryRow(ctx, `SELECT nextval('requisition_ref_seq')`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next reference: %w", err)
	}
	return seq, nil
}

// Create inserta cabecera y líneas en una transacción.
func (r *RequisitionRepo) Create(ctx context.Context, req *entity.Requisition) error {
	return NewTxRunner(r.q).Run(ctx, func(q Querier) error {
		query := `
			INSERT INTO requisitions (id, reference_number, requisition_type, item_type, issued_to, location,
				department, remarks, status, expected_return_at, created_by, created_at, last_updated)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
		_, err := q.Exec(ctx, query,
			req.ID, req.ReferenceNumber, req.RequisitionType, req.ItemType, req.IssuedTo,
			nullIfEmpty(req.Location), nullIfEmpty(req.Department), nullIfEmpty(req.Remarks),
			req.Status, req.ExpectedReturnAt, nullIfEmpty(req.CreatedBy), req.CreatedAt, req.LastUpdated,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return fmt.Errorf("insert requisition: %w", err)
		}

		batch := &pgx.Batch{}
		for _, l := range req.Lines {
			batch.Queue(`
				INSERT INTO requisition_items (requisition_id, line_no, item_type, item_name, item_code, quantity,
					outcome, outcome_reason, catalog_item_id)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				req.ID, l.LineNo, l.ItemType, l.ItemName, nullIfEmpty(l.ItemCode), l.Quantity,
				nullIfEmpty(string(l.Outcome)), nullIfEmpty(l.OutcomeReason), nullIfEmpty(l.CatalogItemID),
			)
		}
		if err := q.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert requisition items: %w", err)
		}
		return nil
	})
}

// GetByID devuelve la requisición con sus líneas; nil si no existe.
func (r *RequisitionRepo) GetByID(ctx context.Context, id string) (*entity.Requisition, error) {
	query := `SELECT ` + requisitionColumns + ` FROM requisitions r WHERE r.id = $1`
	req, err := scanRequisition(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.attachLines(ctx, []*entity.Requisition{req}); err != nil {
		return nil, err
	}
	return req, nil
}

// Update sobrescribe los campos editables de la cabecera; las líneas no cambian.
func (r *RequisitionRepo) Update(ctx context.Context, req *entity.Requisition) error {
	query := `
		UPDATE requisitions SET issued_to = $2, location = $3, department = $4, remarks = $5,
			status = $6, expected_return_at = $7, last_updated = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		req.ID, req.IssuedTo, nullIfEmpty(req.Location), nullIfEmpty(req.Department), nullIfEmpty(req.Remarks),
		req.Status, req.ExpectedReturnAt, req.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("update requisition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SaveLineOutcomes guarda el resultado de conciliación de cada línea y toca last_updated
// de la cabecera para que las otras instancias reciban la notificación.
func (r *RequisitionRepo) SaveLineOutcomes(ctx context.Context, requisitionID string, lines []entity.RequisitionLine) error {
	return NewTxRunner(r.q).Run(ctx, func(q Querier) error {
		tag, err := q.Exec(ctx, `UPDATE requisitions SET last_updated = now() WHERE id = $1`, requisitionID)
		if err != nil {
			return fmt.Errorf("touch requisition: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		for _, l := range lines {
			_, err := q.Exec(ctx, `
				UPDATE requisition_items SET outcome = $3, outcome_reason = $4, catalog_item_id = $5
				WHERE requisition_id = $1 AND line_no = $2`,
				requisitionID, l.LineNo, nullIfEmpty(string(l.Outcome)), nullIfEmpty(l.OutcomeReason),
				nullIfEmpty(l.CatalogItemID),
			)
			if err != nil {
				return fmt.Errorf("save line %d outcome: %w", l.LineNo, err)
			}
		}
		return nil
	})
}

// Delete elimina la requisición (las líneas caen por ON DELETE CASCADE).
func (r *RequisitionRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM requisitions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete requisition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List aplica el filtro en SQL y devuelve las requisiciones más recientes primero.
func (r *RequisitionRepo) List(ctx context.Context, f entity.RequisitionFilter) ([]*entity.Requisition, error) {
	query := `SELECT ` + requisitionColumns + ` FROM requisitions r WHERE true`
	var args []any
	pos := 1
	if f.Type != "" {
		query += fmt.Sprintf(" AND r.requisition_type = $%d", pos)
		args = append(args, f.Type)
		pos++
	}
	if f.Status != "" {
		query += fmt.Sprintf(" AND r.status = $%d", pos)
		args = append(args, f.Status)
		pos++
	}
	if f.ItemType != "" {
		query += fmt.Sprintf(` AND (r.item_type = $%d OR EXISTS (
			SELECT 1 FROM requisition_items i WHERE i.requisition_id = r.id AND i.item_type = $%d))`, pos, pos)
		args = append(args, f.ItemType)
		pos++
	}
	if f.Department != "" {
		query += fmt.Sprintf(" AND lower(r.department) = lower($%d)", pos)
		args = append(args, f.Department)
		pos++
	}
	if f.From != nil {
		query += fmt.Sprintf(" AND r.created_at >= $%d", pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		query += fmt.Sprintf(" AND r.created_at <= $%d", pos)
		args = append(args, *f.To)
		pos++
	}
	if f.OverdueOnly {
		now := f.Now
		if now.IsZero() {
			now = time.Now()
		}
		query += fmt.Sprintf(` AND r.requisition_type = 'issue' AND r.status NOT IN ('rejected', 'completed')
			AND r.expected_return_at IS NOT NULL AND r.expected_return_at < $%d`, pos)
		args = append(args, now)
		pos++
	}
	if strings.TrimSpace(f.Search) != "" {
		query += fmt.Sprintf(` AND (r.reference_number ILIKE $%d OR r.issued_to ILIKE $%d
			OR r.department ILIKE $%d OR r.location ILIKE $%d
			OR EXISTS (SELECT 1 FROM requisition_items i WHERE i.requisition_id = r.id
				AND (i.item_name ILIKE $%d OR i.item_code ILIKE $%d)))`, pos, pos, pos, pos, pos, pos)
		args = append(args, containsPattern(f.Search))
	}
	query += " ORDER BY r.created_at DESC, r.reference_number DESC"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list requisitions: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.Requisition, error) {
		return scanRequisition(row)
	})
	if err != nil {
		return nil, err
	}
	if err := r.attachLines(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// attachLines carga las líneas de todas las requisiciones en una sola consulta.
func (r *RequisitionRepo) attachLines(ctx context.Context, list []*entity.Requisition) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, len(list))
	byID := make(map[string]*entity.Requisition, len(list))
	for i, req := range list {
		ids[i] = req.ID
		byID[req.ID] = req
	}
	rows, err := r.q.Query(ctx, `
		SELECT requisition_id, line_no, item_type, item_name, item_code, quantity, outcome, outcome_reason, catalog_item_id
		FROM requisition_items WHERE requisition_id = ANY($1)
		ORDER BY requisition_id, line_no`, ids)
	if err != nil {
		return fmt.Errorf("list requisition items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var reqID string
		var l entity.RequisitionLine
		var code, outcome, reason, itemID *string
		if err := rows.Scan(&reqID, &l.LineNo, &l.ItemType, &l.ItemName, &code, &l.Quantity,
			&outcome, &reason, &itemID); err != nil {
			return fmt.Errorf("scan requisition item: %w", err)
		}
		l.ItemCode = deref(code)
		l.Outcome = entity.ReconcileOutcome(deref(outcome))
		l.OutcomeReason = deref(reason)
		l.CatalogItemID = deref(itemID)
		if req, ok := byID[reqID]; ok {
			req.Lines = append(req.Lines, l)
		}
	}
	return rows.Err()
}

func scanRequisition(row pgx.Row) (*entity.Requisition, error) {
	var req entity.Requisition
	var location, department, remarks, createdBy *string
	err := row.Scan(&req.ID, &req.ReferenceNumber, &req.RequisitionType, &req.ItemType, &req.IssuedTo,
		&location, &department, &remarks, &req.Status, &req.ExpectedReturnAt, &createdBy,
		&req.CreatedAt, &req.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan requisition: %w", err)
	}
	req.Location = deref(location)
	req.Department = deref(department)
	req.Remarks = deref(remarks)
	req.CreatedBy = deref(createdBy)
	return &req, nil
}
