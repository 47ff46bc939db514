package service

import (
	"eie-registry/internal/model"

	"github.com/google/uuid"
)

// Actor is the authenticated caller as seen by the services.
type Actor struct {
	UserID     uuid.UUID
	Email      string
	Name       string
	OrgID      *uuid.UUID
	OrgName    string
	Role       string
	Privileges []string
}

func ActorFromUser(u *model.User) Actor {
	return Actor{
		UserID:     u.ID,
		Email:      u.Email,
		Name:       u.FullName,
		OrgID:      u.OrganizationID,
		OrgName:    u.OrgName(),
		Role:       u.RoleCode(),
		Privileges: u.GetPrivilegeCodes(),
	}
}

func (a Actor) Can(privilege string) bool {
	for _, p := range a.Privileges {
		if p == privilege {
			return true
		}
	}
	return false
}

// Scope returns the organization filter for a read: nil when the actor holds
// the cross-organization privilege, the actor's own organization otherwise.
// An actor without an organization is scoped to uuid.Nil and sees nothing.
func (a Actor) Scope(viewAll string) *uuid.UUID {
	if a.Can(viewAll) {
		return nil
	}
	if a.OrgID == nil {
		nilID := uuid.Nil
		return &nilID
	}
	id := *a.OrgID
	return &id
}

// Sees reports whether a record of orgID is inside the actor's scope.
func (a Actor) Sees(viewAll string, orgID uuid.UUID) bool {
	scope := a.Scope(viewAll)
	return scope == nil || *scope == orgID
}
