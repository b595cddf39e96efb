package models

import "gorm.io/gorm"

// Viewer tiers. The tier decides which override price applies during
// placement; anonymous visitors have no tier and pay the base/discount price.
const (
	RoleMember   = "member"
	RoleReseller = "reseller"
	RoleAdmin    = "admin"
)

// User is an authenticated customer account or an operator.
type User struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username   string `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email      string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password   string `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"`
	Role       string `json:"role" gorm:"type:varchar(20);default:member" validate:"omitempty,oneof=member reseller admin"`
	gorm.Model `json:"-"`
}
