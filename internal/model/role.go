package model

// Role is the organization role carried in the session token (org_role)
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

const (
	RoleProducer    = "operatore"
	RoleInvitaliaL1 = "invitalia"
	RoleInvitaliaL2 = "invitalia_admin"
)

// IsInvitalia reports whether code belongs to a reviewer role.
func IsInvitalia(code string) bool {
	return code == RoleInvitaliaL1 || code == RoleInvitaliaL2
}

// DefaultRoles defines the roles and the privileges each one is seeded with.
var DefaultRoles = []Role{
	{
		Code:        RoleProducer,
		Name:        "Produttore",
		Description: "Uploads product files and follows the review of its own products",
	},
	{
		Code:        RoleInvitaliaL1,
		Name:        "Invitalia L1",
		Description: "First level reviewer: supervises, rejects or forwards products for approval",
	},
	{
		Code:        RoleInvitaliaL2,
		Name:        "Invitalia L2",
		Description: "Second level reviewer: approves and restores products",
	},
}

var rolePrivileges = map[string][]string{
	RoleProducer: {
		PrivProductView, PrivUploadCreate, PrivUploadView, PrivStatsView,
	},
	RoleInvitaliaL1: {
		PrivProductView, PrivProductViewAll, PrivProductReview,
		PrivUploadView, PrivUploadViewAll, PrivInstitutionView, PrivStatsView,
	},
	RoleInvitaliaL2: {
		PrivProductView, PrivProductViewAll, PrivProductReview, PrivProductApprove, PrivProductRestore,
		PrivUploadView, PrivUploadViewAll, PrivInstitutionView, PrivStatsView,
		PrivUserView, PrivUserCreate,
	},
}

// DefaultPrivilegeCodes returns the privilege codes a role is seeded with.
func DefaultPrivilegeCodes(roleCode string) []string {
	return append([]string(nil), rolePrivileges[roleCode]...)
}
