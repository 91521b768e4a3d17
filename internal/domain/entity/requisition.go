package entity

import (
	"fmt"
	"strings"
	"time"
)

// RequisitionType tipo de movimiento que la requisición aplica sobre el catálogo.
type RequisitionType string

// Tipos de requisición.
const (
	RequisitionIssue   RequisitionType = "issue"   // entrega: resta del catálogo
	RequisitionReturn  RequisitionType = "return"  // devolución: suma al catálogo
	RequisitionConsume RequisitionType = "consume" // consumo: resta del catálogo
)

// Valid indica si el tipo es conocido.
func (t RequisitionType) Valid() bool {
	switch t {
	case RequisitionIssue, RequisitionReturn, RequisitionConsume:
		return true
	}
	return false
}

// Delta traduce una cantidad solicitada al ajuste con signo que se aplica al catálogo.
// issue y consume restan; return suma.
func (t RequisitionType) Delta(quantity int) int {
	if t == RequisitionReturn {
		return quantity
	}
	return -quantity
}

// Withdraws indica si el tipo saca existencias del catálogo.
func (t RequisitionType) Withdraws() bool {
	return t == RequisitionIssue || t == RequisitionConsume
}

// RequisitionStatus vocabulario canónico de estados.
type RequisitionStatus string

// Estados canónicos.
const (
	StatusPending   RequisitionStatus = "pending"
	StatusApproved  RequisitionStatus = "approved"
	StatusRejected  RequisitionStatus = "rejected"
	StatusCompleted RequisitionStatus = "completed"
)

// legacyOverdue estado del libro simplificado ({completed, pending, overdue}).
// Significa "entregado y aún sin devolver pasada la fecha": se guarda como approved
// y el atraso se deriva de ExpectedReturnAt.
const legacyOverdue = "overdue"

// ParseStatus normaliza un estado, aceptando también el vocabulario heredado.
// legacy es true cuando la entrada era "overdue".
func ParseStatus(s string) (status RequisitionStatus, legacy bool, err error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case string(StatusPending), string(StatusApproved), string(StatusRejected), string(StatusCompleted):
		return RequisitionStatus(v), false, nil
	case legacyOverdue:
		return StatusApproved, true, nil
	default:
		return "", false, fmt.Errorf("estado desconocido %q", s)
	}
}

// Terminal indica si el estado ya no admite transiciones.
func (s RequisitionStatus) Terminal() bool {
	return s == StatusRejected || s == StatusCompleted
}

// ReconcileOutcome resultado de aplicar una línea de requisición al catálogo.
type ReconcileOutcome string

// Resultados de conciliación.
const (
	OutcomeApplied ReconcileOutcome = "applied" // cantidad ajustada
	OutcomeMiss    ReconcileOutcome = "miss"    // ningún ítem coincide; catálogo sin cambios
	OutcomeFailed  ReconcileOutcome = "failed"  // error de almacenamiento o categoría inválida
)

// RequisitionLine una línea de la requisición (un ítem del catálogo).
type RequisitionLine struct {
	LineNo        int
	ItemType      Category
	ItemName      string
	ItemCode      string
	Quantity      int
	Outcome       ReconcileOutcome // vacío hasta que se concilia
	OutcomeReason string
	CatalogItemID string // ítem afectado cuando Outcome == applied
}

// MatchKey devuelve el criterio de búsqueda en el catálogo: el código si existe, si no el nombre.
func (l *RequisitionLine) MatchKey() string {
	if strings.TrimSpace(l.ItemCode) != "" {
		return l.ItemCode
	}
	return l.ItemName
}

// Requisition registro del libro de requisiciones (entregas, devoluciones y consumos).
// Borrar una requisición no revierte los ajustes de cantidad ya aplicados.
type Requisition struct {
	ID               string
	ReferenceNumber  string
	RequisitionType  RequisitionType
	ItemType         Category // categoría por defecto de las líneas
	Lines            []RequisitionLine
	IssuedTo         string
	Location         string
	Department       string
	Remarks          string
	Status           RequisitionStatus
	ExpectedReturnAt *time.Time
	CreatedBy        string
	CreatedAt        time.Time
	LastUpdated      time.Time
}

// Overdue indica si una entrega sigue abierta después de su fecha esperada de devolución.
func (r *Requisition) Overdue(now time.Time) bool {
	if r.ExpectedReturnAt == nil || r.Status.Terminal() {
		return false
	}
	return r.RequisitionType == RequisitionIssue && now.After(*r.ExpectedReturnAt)
}

// ReferencePrefix prefijo del número de referencia.
const ReferencePrefix = "REQ-"

// FormatReference construye el número de referencia visible a partir de la secuencia del servidor.
func FormatReference(seq int64) string {
	return fmt.Sprintf("%s%06d", ReferencePrefix, seq)
}

// RequisitionChange notificación de cambio en el libro.
type RequisitionChange struct {
	Op            string // create, update, delete
	RequisitionID string
}

// Operaciones de cambio del libro.
const (
	ChangeCreate = "create"
	ChangeUpdate = "update"
	ChangeDelete = "delete"
)
