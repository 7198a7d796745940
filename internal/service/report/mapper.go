package report

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fieldpay/dunning/internal/model"
)

// Delimiters for concatenated attempt fields.
const (
	remarkSeparator = "; "
	reasonSeparator = ", "
)

// mapRow turns one case plus the preloaded lookups into one report row.
// Pure function: no I/O, and data-quality problems degrade the affected
// field instead of failing the report.
func mapRow(c model.CollectionCase, b *LookupBundle, loc *time.Location) model.ReportRow {
	row := model.ReportRow{
		CaseID:         c.ID,
		ContractID:     c.ContractID,
		PaymentID:      c.PaymentID,
		CustomerName:   c.CustomerName,
		AmountDue:      c.AmountDue,
		StatusLabel:    model.StatusLabel(c.Status),
		AssignedToName: userName(b, c.AssignedTo),
		AssignedByName: userName(b, c.AssignedBy),
		AssignedAt:     localTime(c.AssignedAt, loc),
		Remarks:        distinctJoin(b.Remarks[c.ID], remarkSeparator),
		Reasons:        distinctJoin(b.Reasons[c.ID], reasonSeparator),
		PostponeCount:  b.PostponeCounts[c.ContractID],
	}

	if a, ok := b.LatestAttempts[c.ID]; ok {
		row.AttemptStartedAt = localTime(a.StartedAt, loc)
		row.AttemptEndedAt = localTime(a.EndedAt, loc)
		row.AttemptSeconds = a.DurationSeconds()
		row.AttemptedByName = userName(b, &a.CreatedBy)
		if a.OutcomeID != nil {
			row.OutcomeName = b.Outcomes[*a.OutcomeID]
		}
	}

	if p, ok := b.Promises[c.PaymentID]; ok {
		amount := p.Amount
		promisedAt := p.PromisedAt.In(loc)
		row.PromiseAmount = &amount
		row.PromisedAt = &promisedAt
	}

	return row
}

// userName resolves a user reference to a display name. The system sentinel
// maps to a fixed literal; an unresolvable id degrades to empty.
func userName(b *LookupBundle, id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	if *id == model.SystemActorID {
		return model.SystemActorLabel
	}
	if u, ok := b.Users[*id]; ok {
		return u.FullName
	}
	return ""
}

// localTime shifts an instant into the business timezone, preserving nil.
func localTime(t *time.Time, loc *time.Location) *time.Time {
	if t == nil {
		return nil
	}
	local := t.In(loc)
	return &local
}

// distinctJoin deduplicates values and joins them with sep, keeping the
// order of first occurrence.
func distinctJoin(values []string, sep string) string {
	if len(values) == 0 {
		return ""
	}
	seen := make(map[string]struct{}, len(values))
	distinct := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		distinct = append(distinct, v)
	}
	return strings.Join(distinct, sep)
}
