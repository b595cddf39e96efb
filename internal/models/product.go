package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a game whose credits can be topped up. DiscountPercent applies a
// flat percentage off the base price of every variation while DiscountActive
// is set, unless a viewer-tier override price takes precedence.
type Product struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name            string          `json:"name" validate:"required,min=2,max=100"`
	Category        string          `json:"category" validate:"omitempty,max=50"`
	Description     string          `json:"description" validate:"omitempty,max=500"`
	ImageURL        string          `json:"image_url" validate:"omitempty,url"`
	DiscountPercent decimal.Decimal `json:"discount_percent" gorm:"type:numeric" validate:"omitempty"`
	DiscountActive  bool            `json:"discount_active"`
	FieldLabels     StringList      `json:"field_labels" gorm:"type:text"`
	Variations      []Variation     `json:"variations" gorm:"foreignKey:ProductID"`
	gorm.Model      `json:"-"`
}

// Variation is a purchasable credit package of a product. ResellerPrice and
// MemberPrice, when set, override the base price for authenticated viewers of
// the matching tier.
type Variation struct {
	ID            string           `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	ProductID     string           `json:"product_id" gorm:"index;type:varchar(36)"`
	Name          string           `json:"name" validate:"required,min=1,max=100"`
	BasePrice     decimal.Decimal  `json:"base_price" gorm:"type:numeric" validate:"required"`
	ResellerPrice *decimal.Decimal `json:"reseller_price,omitempty" gorm:"type:numeric"`
	MemberPrice   *decimal.Decimal `json:"member_price,omitempty" gorm:"type:numeric"`
	AddOns        AddOnList        `json:"add_ons,omitempty" gorm:"type:text"`
	gorm.Model    `json:"-"`
}
