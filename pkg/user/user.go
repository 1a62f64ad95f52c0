package user

import (
	"errors"
	"strings"
)

var (
	ErrNoPrincipal = errors.New("NO_PRINCIPAL")
	ErrNotAdmin    = errors.New("ADMIN_ONLY")
)

// Principal is the caller identity handed over by the auth layer. The engine
// never provisions users; it only needs the id and the admin capability.
type Principal struct {
	UserID  string `json:"user_id"`
	IsAdmin bool   `json:"is_admin"`
}

// Admins answers isAdmin(userID) for the identity collaborator.
type Admins interface {
	IsAdmin(userID string) bool
}

type StaticAdmins struct {
	ids map[string]struct{}
}

func NewStaticAdmins(ids ...string) *StaticAdmins {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" {
			set[id] = struct{}{}
		}
	}
	return &StaticAdmins{ids: set}
}

// ParseStaticAdmins reads a comma separated list, e.g. ADMIN_USER_IDS.
func ParseStaticAdmins(list string) *StaticAdmins {
	return NewStaticAdmins(strings.Split(list, ",")...)
}

func (a *StaticAdmins) IsAdmin(userID string) bool {
	if a == nil {
		return false
	}
	_, ok := a.ids[userID]
	return ok
}
