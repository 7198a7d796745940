package model

import (
	"time"

	"github.com/google/uuid"
)

// DutyRosterEntry records whether an agent is working on a given date.
// At most one non-deleted entry exists per (agent, work date); membership
// is mutated by soft-delete so history is preserved.
type DutyRosterEntry struct {
	ID        int64      `json:"id"`
	AgentID   uuid.UUID  `json:"agent_id"`
	WorkDate  time.Time  `json:"work_date"`
	IsWorking bool       `json:"is_working"`
	CreatedBy uuid.UUID  `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}
