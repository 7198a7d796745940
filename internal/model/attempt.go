package model

import (
	"time"

	"github.com/google/uuid"
)

// CallAttempt is one logged contact attempt against a case. Rows are
// immutable once written except for soft-delete. The latest attempt for a
// case is the one with the greatest started_at, ties broken by greatest id.
type CallAttempt struct {
	ID            int64      `json:"id"`
	CaseID        uuid.UUID  `json:"case_id"`
	ContractID    string     `json:"contract_id"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
	OutcomeID     *int64     `json:"outcome_id,omitempty"`
	ReasonID      *int64     `json:"reason_id,omitempty"`
	Remark        *string    `json:"remark,omitempty"`
	AskedPostpone bool       `json:"asked_postpone"`
	CreatedBy     uuid.UUID  `json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

// DurationSeconds returns the whole-second call duration, or nil when either
// bound is missing or the bounds are inverted. Absent is never reported as zero.
func (a CallAttempt) DurationSeconds() *int64 {
	if a.StartedAt == nil || a.EndedAt == nil {
		return nil
	}
	d := a.EndedAt.Sub(*a.StartedAt)
	if d < 0 {
		return nil
	}
	secs := int64(d / time.Second)
	return &secs
}

// PromiseRecord is an append-only promise-to-pay entry for a payment id.
// The latest active promise is the active row with the greatest created_at,
// ties broken by greatest id.
type PromiseRecord struct {
	ID         int64     `json:"id"`
	PaymentID  string    `json:"payment_id"`
	Amount     float64   `json:"amount"`
	PromisedAt time.Time `json:"promised_at"`
	Active     bool      `json:"active"`
	CreatedBy  uuid.UUID `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}
