package model

// Privilege represents a permission that can be assigned to roles and users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "product:review"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

const (
	PrivProductView     = "product:view"
	PrivProductViewAll  = "product:view_all"
	PrivProductReview   = "product:review"
	PrivProductApprove  = "product:approve"
	PrivProductRestore  = "product:restore"
	PrivUploadCreate    = "upload:create"
	PrivUploadView      = "upload:view"
	PrivUploadViewAll   = "upload:view_all"
	PrivInstitutionView = "institution:view"
	PrivUserView        = "user:view"
	PrivUserCreate      = "user:create"
	PrivStatsView       = "stats:view"
)

// DefaultPrivileges seeded at startup
var DefaultPrivileges = []Privilege{
	// Products
	{Code: PrivProductView, Name: "View Products"},
	{Code: PrivProductViewAll, Name: "View Products Of Every Producer"},
	{Code: PrivProductReview, Name: "Supervise, Reject Or Forward Products"},
	{Code: PrivProductApprove, Name: "Approve Products"},
	{Code: PrivProductRestore, Name: "Restore Rejected Products"},
	// Product files
	{Code: PrivUploadCreate, Name: "Upload Product Files"},
	{Code: PrivUploadView, Name: "View Product Files"},
	{Code: PrivUploadViewAll, Name: "View Product Files Of Every Producer"},
	// Lookup
	{Code: PrivInstitutionView, Name: "View Institutions"},
	{Code: PrivStatsView, Name: "View Statistics"},
	// Users
	{Code: PrivUserView, Name: "View Users"},
	{Code: PrivUserCreate, Name: "Create Users"},
}
