package domain

import (
	"time"

	"gorm.io/datatypes"
)

type PriceUnit string

const (
	UnitHour    PriceUnit = "hour"
	UnitDay     PriceUnit = "day"
	UnitPackage PriceUnit = "package"
)

// Brand is a tenant: it owns products and receives bookings.
type Brand struct {
	ID          int64  `json:"id" gorm:"primaryKey"`
	OwnerID     int64  `json:"owner_id" gorm:"column:owner_id;index"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty" gorm:"type:text"`
	City        string `json:"city,omitempty"`

	// Shown to customers for manual bank-transfer payment.
	BankAccount string `json:"bank_account,omitempty" gorm:"column:bank_account"`

	IsActive  bool      `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Products []Product `json:"products,omitempty"`
}

func (Brand) TableName() string { return "brands" }

type Product struct {
	ID          int64          `json:"id" gorm:"primaryKey"`
	BrandID     int64          `json:"brand_id" gorm:"column:brand_id;index"`
	Name        string         `json:"name" validate:"required"`
	Description string         `json:"description,omitempty" gorm:"type:text"`
	Price       float64        `json:"price" validate:"required,gte=0"`
	PriceUnit   PriceUnit      `json:"price_unit" gorm:"column:price_unit;size:16;default:day"`
	Photos      datatypes.JSON `json:"photos,omitempty"`
	Amenities   datatypes.JSON `json:"amenities,omitempty"`
	IsActive    bool           `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	Brand *Brand `json:"brand,omitempty" gorm:"foreignKey:BrandID"`
}

func (Product) TableName() string { return "products" }
