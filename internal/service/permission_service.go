package service

import (
	"eie-registry/internal/model"
	"eie-registry/internal/repository"
)

// Permissions is what the portal needs to decide which pages and buttons to
// show.
type Permissions struct {
	Role       string   `json:"role"`
	Privileges []string `json:"privileges"`
	Reviewer   bool     `json:"reviewer"`
}

type PermissionService interface {
	For(actor Actor) Permissions
	Roles() ([]model.Role, error)
	Privileges() ([]model.Privilege, error)
}

type permissionService struct {
	roleRepo      repository.RoleRepository
	privilegeRepo repository.PrivilegeRepository
}

func NewPermissionService(roleRepo repository.RoleRepository, privilegeRepo repository.PrivilegeRepository) PermissionService {
	return &permissionService{roleRepo: roleRepo, privilegeRepo: privilegeRepo}
}

func (s *permissionService) For(actor Actor) Permissions {
	privileges := actor.Privileges
	if privileges == nil {
		privileges = []string{}
	}
	return Permissions{
		Role:       actor.Role,
		Privileges: privileges,
		Reviewer:   model.IsInvitalia(actor.Role),
	}
}

func (s *permissionService) Roles() ([]model.Role, error) {
	return s.roleRepo.FindAll()
}

func (s *permissionService) Privileges() ([]model.Privilege, error) {
	return s.privilegeRepo.FindAll()
}
