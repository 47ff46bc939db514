package model

import (
	"time"

	"github.com/google/uuid"
)

type ProductStatus string

const (
	StatusUploaded     ProductStatus = "UPLOADED"
	StatusWaitApproved ProductStatus = "WAIT_APPROVED"
	StatusSupervised   ProductStatus = "SUPERVISED"
	StatusApproved     ProductStatus = "APPROVED"
	StatusRejected     ProductStatus = "REJECTED"
)

var ProductStatuses = []ProductStatus{
	StatusUploaded, StatusWaitApproved, StatusSupervised, StatusApproved, StatusRejected,
}

func (s ProductStatus) Valid() bool {
	for _, v := range ProductStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type Category string

const (
	CategoryWashingMachines   Category = "WASHINGMACHINES"
	CategoryWasherDriers      Category = "WASHERDRIERS"
	CategoryOvens             Category = "OVENS"
	CategoryRangeHoods        Category = "RANGEHOODS"
	CategoryDishwashers       Category = "DISHWASHERS"
	CategoryTumbleDryers      Category = "TUMBLEDRYERS"
	CategoryRefrigeratingAppl Category = "REFRIGERATINGAPPL"
	CategoryCookingHobs       Category = "COOKINGHOBS"
)

var Categories = []Category{
	CategoryWashingMachines, CategoryWasherDriers, CategoryOvens, CategoryRangeHoods,
	CategoryDishwashers, CategoryTumbleDryers, CategoryRefrigeratingAppl, CategoryCookingHobs,
}

func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// HasEPREL reports whether products of the category are registered on EPREL.
// Cooking hobs carry no energy label, so brand and model come from the file.
func (c Category) HasEPREL() bool {
	return c != CategoryCookingHobs
}

// Product is one registered appliance, identified by its GTIN.
type Product struct {
	BaseModel
	GtinCode            string        `gorm:"type:varchar(14);uniqueIndex;not null" json:"gtin_code" validate:"required,gtin"`
	EprelCode           string        `gorm:"type:varchar(20);index" json:"eprel_code" validate:"omitempty,digits"`
	ProductCode         string        `gorm:"type:varchar(100)" json:"product_code" validate:"required,max=100"`
	Category            Category      `gorm:"type:varchar(30);not null;index" json:"category" validate:"required"`
	CountryOfProduction string        `gorm:"type:varchar(2)" json:"country_of_production" validate:"required,len=2"`
	Brand               string        `gorm:"type:varchar(255);index" json:"brand"`
	Model               string        `gorm:"type:varchar(255)" json:"model"`
	EnergyClass         string        `gorm:"type:varchar(5)" json:"energy_class"`
	Capacity            string        `gorm:"type:varchar(50)" json:"capacity,omitempty"`
	Status              ProductStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Motivation          string        `gorm:"type:varchar(200)" json:"motivation,omitempty"`
	OrganizationID      uuid.UUID     `gorm:"type:uuid;not null;index" json:"organization_id"`
	OrganizationName    string        `gorm:"type:varchar(255)" json:"organization_name"`
	ProductFileID       uuid.UUID     `gorm:"type:uuid;index" json:"product_file_id"`
	RegistrationDate    time.Time     `json:"registration_date"`
}
