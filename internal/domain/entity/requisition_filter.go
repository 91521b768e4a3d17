package entity

import (
	"strings"
	"time"
)

// RequisitionFilter predicado de búsqueda sobre el libro. Los campos vacíos no filtran.
type RequisitionFilter struct {
	Type        RequisitionType
	Status      RequisitionStatus
	ItemType    Category
	Department  string
	Search      string // referencia, persona, nombre o código de ítem (contiene, sin mayúsculas)
	From        *time.Time
	To          *time.Time
	OverdueOnly bool
	Now         time.Time // referencia para OverdueOnly; cero = time.Now()
}

// Matches evalúa el filtro sobre una requisición.
func (f RequisitionFilter) Matches(r *Requisition) bool {
	if f.Type != "" && r.RequisitionType != f.Type {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.ItemType != "" && !r.touches(f.ItemType) {
		return false
	}
	if f.Department != "" && !strings.EqualFold(r.Department, f.Department) {
		return false
	}
	if f.From != nil && r.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && r.CreatedAt.After(*f.To) {
		return false
	}
	if f.OverdueOnly {
		now := f.Now
		if now.IsZero() {
			now = time.Now()
		}
		if !r.Overdue(now) {
			return false
		}
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		return r.contains(q)
	}
	return true
}

func (r *Requisition) touches(c Category) bool {
	if r.ItemType == c {
		return true
	}
	for _, l := range r.Lines {
		if l.ItemType == c {
			return true
		}
	}
	return false
}

func (r *Requisition) contains(q string) bool {
	fields := []string{r.ReferenceNumber, r.IssuedTo, r.Department, r.Location}
	for _, l := range r.Lines {
		fields = append(fields, l.ItemName, l.ItemCode)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
