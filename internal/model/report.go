package model

import (
	"time"

	"github.com/google/uuid"
)

// AssignmentPair binds one case to one agent within a distribution run.
type AssignmentPair struct {
	CaseID  uuid.UUID `json:"case_id"`
	AgentID uuid.UUID `json:"agent_id"`
}

// Skip reasons for a distribution run that completed without writing.
const (
	SkipNoAgents        = "no_agents"
	SkipNoEligibleCases = "no_eligible_cases"
)

// AssignmentSummary is the audit record of one distribution run. It is
// produced for observability only and never drives control flow.
type AssignmentSummary struct {
	Date        time.Time         `json:"date"`
	AssignedBy  uuid.UUID         `json:"assigned_by"`
	TotalCases  int               `json:"total_cases"`
	TotalAgents int               `json:"total_agents"`
	PerAgent    map[uuid.UUID]int `json:"per_agent"`
	Pairs       []AssignmentPair  `json:"pairs"`
	Skipped     string            `json:"skipped,omitempty"`
}

// ReportRow is one denormalized line of the daily collections report.
// It is derived at generation time and never persisted.
type ReportRow struct {
	CaseID           uuid.UUID  `json:"case_id"`
	ContractID       string     `json:"contract_id"`
	PaymentID        string     `json:"payment_id"`
	CustomerName     string     `json:"customer_name"`
	AmountDue        float64    `json:"amount_due"`
	StatusLabel      string     `json:"status"`
	AssignedToName   string     `json:"assigned_to"`
	AssignedByName   string     `json:"assigned_by"`
	AssignedAt       *time.Time `json:"assigned_at,omitempty"`
	AttemptStartedAt *time.Time `json:"attempt_started_at,omitempty"`
	AttemptEndedAt   *time.Time `json:"attempt_ended_at,omitempty"`
	AttemptSeconds   *int64     `json:"attempt_seconds,omitempty"`
	AttemptedByName  string     `json:"attempted_by,omitempty"`
	OutcomeName      string     `json:"outcome,omitempty"`
	Reasons          string     `json:"reasons,omitempty"`
	Remarks          string     `json:"remarks,omitempty"`
	PostponeCount    int        `json:"postpone_count"`
	PromiseAmount    *float64   `json:"promise_amount,omitempty"`
	PromisedAt       *time.Time `json:"promised_at,omitempty"`
}
