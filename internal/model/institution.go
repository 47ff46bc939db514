package model

// Institution is a producer organization, or Invitalia itself.
type Institution struct {
	BaseModel
	Name       string `gorm:"type:varchar(255);not null;index" json:"name" validate:"required"`
	FiscalCode string `gorm:"type:varchar(16);uniqueIndex" json:"fiscal_code" validate:"required,max=16"`
	VatNumber  string `gorm:"type:varchar(20)" json:"vat_number"`
	Email      string `gorm:"type:varchar(255)" json:"email" validate:"omitempty,email"`
	Status     string `gorm:"type:varchar(20);default:'ACTIVE'" json:"status"`
}

const InvitaliaFiscalCode = "05678721001"
