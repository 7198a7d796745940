package model

import (
	"time"

	"github.com/google/uuid"
)

// SystemActorID is the reserved sentinel for actions performed by the
// engine itself rather than a person. It never resolves to a users row.
var SystemActorID = uuid.Nil

// SystemActorLabel is the display name reports use for SystemActorID.
const SystemActorLabel = "SYSTEM"

// User is an operator or call-center agent identity. Owned by an external
// identity system; the engine only reads it.
type User struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Active    bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Agent is the roster-facing view of a user eligible to receive cases.
type Agent struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
