package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/em-inventario/internal/domain/entity"
)

func TestRequisitionType_Delta(t *testing.T) {
	assert.Equal(t, -5, entity.RequisitionIssue.Delta(5))
	assert.Equal(t, -5, entity.RequisitionConsume.Delta(5))
	assert.Equal(t, 2, entity.RequisitionReturn.Delta(2))
}

func TestParseStatus_VocabularioHeredado(t *testing.T) {
	cases := []struct {
		in     string
		want   entity.RequisitionStatus
		legacy bool
	}{
		{"pending", entity.StatusPending, false},
		{"Approved", entity.StatusApproved, false},
		{"rejected", entity.StatusRejected, false},
		{" completed ", entity.StatusCompleted, false},
		{"overdue", entity.StatusApproved, true},
	}
	for _, tc := range cases {
		got, legacy, err := entity.ParseStatus(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
		assert.Equal(t, tc.legacy, legacy, tc.in)
	}

	_, _, err := entity.ParseStatus("archived")
	assert.Error(t, err)
}

func TestFormatReference(t *testing.T) {
	assert.Equal(t, "REQ-000001", entity.FormatReference(1))
	assert.Equal(t, "REQ-123456", entity.FormatReference(123456))
}

func TestRequisition_Overdue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	due := now.Add(-24 * time.Hour)
	r := &entity.Requisition{
		RequisitionType:  entity.RequisitionIssue,
		Status:           entity.StatusApproved,
		ExpectedReturnAt: &due,
	}
	assert.True(t, r.Overdue(now))

	r.Status = entity.StatusCompleted
	assert.False(t, r.Overdue(now), "una requisición completada nunca está atrasada")

	r.Status = entity.StatusApproved
	r.ExpectedReturnAt = nil
	assert.False(t, r.Overdue(now))
}

func TestRequisitionFilter_Matches(t *testing.T) {
	r := &entity.Requisition{
		ReferenceNumber: "REQ-000007",
		RequisitionType: entity.RequisitionIssue,
		ItemType:        entity.CategoryPPE,
		Department:      "Mechanical",
		IssuedTo:        "K. Wong",
		Status:          entity.StatusPending,
		Lines:           []entity.RequisitionLine{{ItemType: entity.CategoryPPE, ItemName: "Safety Helmet", Quantity: 5}},
		CreatedAt:       time.Now(),
	}

	assert.True(t, entity.RequisitionFilter{}.Matches(r))
	assert.True(t, entity.RequisitionFilter{Search: "helmet"}.Matches(r))
	assert.True(t, entity.RequisitionFilter{Department: "mechanical"}.Matches(r))
	assert.False(t, entity.RequisitionFilter{Type: entity.RequisitionReturn}.Matches(r))
	assert.False(t, entity.RequisitionFilter{ItemType: entity.CategoryTools}.Matches(r))
	assert.False(t, entity.RequisitionFilter{Status: entity.StatusCompleted}.Matches(r))
}
