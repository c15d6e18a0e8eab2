package identity

import "errors"

// Role is the closed set of caller roles. Authorization decisions switch
// exhaustively over it so a new role is a compile-time-visible change.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

// Tier is the membership level controlling metered-service ceilings.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

func (t Tier) IsValid() bool {
	switch t {
	case TierFree, TierPremium:
		return true
	}
	return false
}

// Identity is the resolved caller passed explicitly into core services.
type Identity struct {
	UserID string
	Role   Role
	Tier   Tier
}

var (
	ErrMissingToken = errors.New("identity: missing bearer token")
	ErrInvalidToken = errors.New("identity: invalid bearer token")
)
