package models

import "gorm.io/gorm"

// PaymentMethod is a manual payment channel (e.g. a wallet or bank account)
// the customer sends money to before uploading a receipt. DisplayName is the
// label written into an order's customer info.
type PaymentMethod struct {
	ID            string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	DisplayName   string `json:"display_name" validate:"required,min=2,max=100"`
	AccountName   string `json:"account_name" validate:"omitempty,max=100"`
	AccountNumber string `json:"account_number" validate:"omitempty,max=50"`
	QRImageURL    string `json:"qr_image_url" validate:"omitempty,url"`
	Enabled       bool   `json:"enabled"`
	gorm.Model    `json:"-"`
}
