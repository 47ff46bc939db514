package service

import (
	"errors"
	"fmt"
	"strings"

	"eie-registry/internal/model"
	"eie-registry/internal/repository"
	"eie-registry/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService interface {
	CreateUser(req *CreateUserRequest, creatorID string) (*model.User, error)
	GetUsers(filter repository.UserFilter) (model.Page[model.UserResponse], error)
	GetUserByID(id uuid.UUID) (*model.UserResponse, error)
}

type CreateUserRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6"`
	FullName       string `json:"full_name" validate:"required"`
	RoleCode       string `json:"role" validate:"required,oneof=operatore invitalia invitalia_admin"`
	OrganizationID string `json:"organization_id" validate:"omitempty,uuid"`
}

type userService struct {
	userRepo        repository.UserRepository
	roleRepo        repository.RoleRepository
	institutionRepo repository.InstitutionRepository
}

func NewUserService(userRepo repository.UserRepository, roleRepo repository.RoleRepository, institutionRepo repository.InstitutionRepository) UserService {
	return &userService{
		userRepo:        userRepo,
		roleRepo:        roleRepo,
		institutionRepo: institutionRepo,
	}
}

// CreateUser binds reviewers to the Invitalia institution and producers to
// the organization named in the request.
func (s *userService) CreateUser(req *CreateUserRequest, creatorID string) (*model.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, validator.Summary(errs))
	}

	if existing, _ := s.userRepo.FindByEmail(req.Email); existing != nil {
		return nil, ErrEmailExists
	}

	role, err := s.roleRepo.FindByCode(req.RoleCode)
	if err != nil {
		return nil, ErrRoleNotFound
	}

	org, err := s.organizationFor(req)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:          req.Email,
		FullName:       req.FullName,
		OrganizationID: &org.ID,
		RoleID:         &role.ID,
		IsActive:       true,
		Privileges:     role.Privileges,
	}
	user.CreatedBy = creatorID
	user.UpdatedBy = creatorID
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return s.userRepo.FindByID(user.ID)
}

func (s *userService) organizationFor(req *CreateUserRequest) (*model.Institution, error) {
	if model.IsInvitalia(req.RoleCode) {
		org, err := s.institutionRepo.FindByFiscalCode(model.InvitaliaFiscalCode)
		if err != nil {
			return nil, fmt.Errorf("%w: invitalia institution is not seeded", ErrInstitutionNotFound)
		}
		return org, nil
	}

	if req.OrganizationID == "" {
		return nil, fmt.Errorf("%w: organization_id is required for producers", ErrValidation)
	}
	id, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("%w: organization_id", ErrValidation)
	}
	org, err := s.institutionRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInstitutionNotFound
	}
	return org, err
}

func (s *userService) GetUsers(filter repository.UserFilter) (model.Page[model.UserResponse], error) {
	filter.Page, filter.Size = repository.NormalizePage(filter.Page, filter.Size)
	users, total, err := s.userRepo.List(filter)
	if err != nil {
		return model.Page[model.UserResponse]{}, err
	}

	responses := make([]model.UserResponse, len(users))
	for i := range users {
		responses[i] = users[i].ToResponse()
	}
	return model.NewPage(responses, filter.Page, filter.Size, total), nil
}

func (s *userService) GetUserByID(id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	resp := user.ToResponse()
	return &resp, nil
}
