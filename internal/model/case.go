package model

import (
	"time"

	"github.com/google/uuid"
)

// CaseStatus is the lifecycle state of a collection case.
type CaseStatus string

const (
	StatusOpen       CaseStatus = "open"
	StatusInProgress CaseStatus = "in_progress"
	StatusCompleted  CaseStatus = "completed"
)

// statusLabels maps internal status codes to the labels used in reports.
var statusLabels = map[CaseStatus]string{
	StatusOpen:       "Open",
	StatusInProgress: "In Progress",
	StatusCompleted:  "Completed",
}

// StatusLabel translates a status code to its report label. Unrecognized
// codes pass through unchanged so new codes don't break existing reports.
func StatusLabel(s CaseStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// CollectionCase is the unit of work distributed to agents. The assignment
// fields are set together in one transaction and never cleared by the
// distributor; only an explicit reassignment may change them.
type CollectionCase struct {
	ID           uuid.UUID  `json:"id"`
	ContractID   string     `json:"contract_id"`
	PaymentID    string     `json:"payment_id"`
	CustomerName string     `json:"customer_name"`
	AmountDue    float64    `json:"amount_due"`
	Status       CaseStatus `json:"status"`
	AssignedTo   *uuid.UUID `json:"assigned_to,omitempty"`
	AssignedBy   *uuid.UUID `json:"assigned_by,omitempty"`
	AssignedAt   *time.Time `json:"assigned_at,omitempty"`
	UpdatedBy    *uuid.UUID `json:"updated_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Eligible reports whether the case may be picked up by a distribution run:
// not completed, not yet assigned, not soft-deleted.
func (c CollectionCase) Eligible() bool {
	return c.Status != StatusCompleted && c.AssignedTo == nil && c.DeletedAt == nil
}
