package domain

import (
	"time"

	"github.com/google/uuid"
)

type VoteAction string

const (
	ActionConfirm VoteAction = "confirm"
	ActionReject  VoteAction = "reject"
	ActionResolve VoteAction = "resolve"
)

func (a VoteAction) Valid() bool {
	return a == ActionConfirm || a == ActionReject || a == ActionResolve
}

type Role string

const (
	RoleDriver      Role = "driver"
	RoleTrustedUser Role = "trusted_user"
	RoleAdmin       Role = "admin"
)

// Elevated roles short-circuit resolve consensus and carry extra vote weight.
func (r Role) Elevated() bool {
	return r == RoleTrustedUser || r == RoleAdmin
}

// Vote is one community validation record. The (HazardID, UserID) pair is
// unique in the ledger, one vote per user per hazard no matter the action.
type Vote struct {
	ID        uuid.UUID  `json:"id"`
	HazardID  uuid.UUID  `json:"hazard_id"`
	UserID    uuid.UUID  `json:"user_id"`
	Action    VoteAction `json:"action"`
	Location  Coordinate `json:"location"`
	CreatedAt time.Time  `json:"created_at"`
}
