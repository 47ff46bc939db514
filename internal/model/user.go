package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User is a portal account bound to one organization.
type User struct {
	BaseModel
	Email          string       `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Password       string       `gorm:"type:varchar(255);not null" json:"-"`
	FullName       string       `gorm:"type:varchar(255)" json:"full_name" validate:"required"`
	OrganizationID *uuid.UUID   `gorm:"type:uuid;index" json:"organization_id"`
	Organization   *Institution `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	RoleID         *uint        `gorm:"index" json:"role_id"`
	Role           *Role        `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	IsActive       bool         `gorm:"default:true" json:"is_active"`
	Privileges     []Privilege  `gorm:"many2many:user_privileges;" json:"privileges,omitempty"`
	TokenVersion   string       `gorm:"type:varchar(255);default:''" json:"-"` // single active session
	LastLoginAt    *time.Time   `json:"last_login_at,omitempty"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

func (u *User) HasPrivilege(code string) bool {
	for _, p := range u.Privileges {
		if p.Code == code {
			return true
		}
	}
	return false
}

func (u *User) GetPrivilegeCodes() []string {
	codes := make([]string, len(u.Privileges))
	for i, p := range u.Privileges {
		codes[i] = p.Code
	}
	return codes
}

func (u *User) RoleCode() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Code
}

func (u *User) OrgID() string {
	if u.OrganizationID == nil {
		return ""
	}
	return u.OrganizationID.String()
}

func (u *User) OrgName() string {
	if u.Organization == nil {
		return ""
	}
	return u.Organization.Name
}

// UserResponse is the API shape of a user, without credentials.
type UserResponse struct {
	ID             uuid.UUID    `json:"id"`
	Email          string       `json:"email"`
	FullName       string       `json:"full_name"`
	OrganizationID *uuid.UUID   `json:"organization_id,omitempty"`
	Organization   *Institution `json:"organization,omitempty"`
	OrgRole        string       `json:"org_role"`
	Role           *Role        `json:"role,omitempty"`
	IsActive       bool         `json:"is_active"`
	LastLoginAt    *time.Time   `json:"last_login_at,omitempty"`
	Privileges     []string     `json:"privileges"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		FullName:       u.FullName,
		OrganizationID: u.OrganizationID,
		Organization:   u.Organization,
		OrgRole:        u.RoleCode(),
		Role:           u.Role,
		IsActive:       u.IsActive,
		LastLoginAt:    u.LastLoginAt,
		Privileges:     u.GetPrivilegeCodes(),
	}
}
