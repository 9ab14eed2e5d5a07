package models

import "time"

const (
	AddressHome  = "home"
	AddressWork  = "work"
	AddressOther = "other"
)

// CustomerAddress belongs to one user. At most one address per user is the
// default, and one always is while any exist.
type CustomerAddress struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       string    `gorm:"size:64;not null;index" json:"user_id"`
	AddressLine1 string    `gorm:"size:255;not null" json:"address_line1"`
	AddressLine2 *string   `gorm:"size:255" json:"address_line2"`
	City         string    `gorm:"size:100;not null" json:"city"`
	State        string    `gorm:"size:100;not null" json:"state"`
	PinCode      string    `gorm:"size:10;not null" json:"pin_code"`
	AddressType  string    `gorm:"size:16;not null;default:home" json:"address_type"`
	Label        *string   `gorm:"size:100" json:"label"`
	IsDefault    bool      `gorm:"not null;default:false" json:"is_default"`
	Latitude     *float64  `json:"latitude"`
	Longitude    *float64  `json:"longitude"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
