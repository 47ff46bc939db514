package model

import "github.com/google/uuid"

// ProductStatusHistory records one reviewer action on one product.
type ProductStatusHistory struct {
	BaseModel
	ProductID  uuid.UUID     `gorm:"type:uuid;not null;index" json:"product_id" validate:"uuid_required"`
	GtinCode   string        `gorm:"type:varchar(14);not null;index" json:"gtin_code"`
	Action     string        `gorm:"type:varchar(20);not null" json:"action"`
	FromStatus ProductStatus `gorm:"type:varchar(20);not null" json:"from_status"`
	ToStatus   ProductStatus `gorm:"type:varchar(20);not null;index" json:"to_status"`
	Motivation string        `gorm:"type:varchar(200)" json:"motivation,omitempty"`
	ActorID    string        `gorm:"type:varchar(255)" json:"actor_id"`
	ActorName  string        `gorm:"type:varchar(255)" json:"actor_name"`
	ActorRole  string        `gorm:"type:varchar(50)" json:"actor_role"`
}

func (ProductStatusHistory) TableName() string {
	return "product_status_history"
}
