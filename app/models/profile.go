package models

import "time"

const (
	UserTypeCustomer    = "customer"
	UserTypeFoodMaker   = "food_maker"
	UserTypeDistributor = "distributor"
)

type UserProfile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       string    `gorm:"size:64;not null;uniqueIndex" json:"user_id"`
	UserType     string    `gorm:"size:32;not null" json:"user_type"`
	PhoneNumber  string    `gorm:"size:32" json:"phone_number"`
	ProfileImage *string   `gorm:"size:512" json:"profile_image"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const (
	VerificationPending  = "pending"
	VerificationApproved = "approved"
	VerificationRejected = "rejected"
)

// FoodMakerVerification keeps the submitted sections as JSON text.
type FoodMakerVerification struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	FoodMakerID      uint       `gorm:"not null;uniqueIndex" json:"food_maker_id"`
	PersonalInfo     string     `gorm:"type:text;not null" json:"personal_info"`
	BusinessDetails  string     `gorm:"type:text;not null" json:"business_details"`
	DocumentURLs     string     `gorm:"column:document_urls;type:text;not null" json:"document_urls"`
	QualityChecklist string     `gorm:"type:text;not null" json:"quality_checklist"`
	Status           string     `gorm:"size:16;not null;default:pending" json:"status"`
	SubmittedAt      time.Time  `gorm:"not null" json:"submitted_at"`
	ReviewedAt       *time.Time `json:"reviewed_at"`
	AdminNotes       *string    `gorm:"type:text" json:"admin_notes"`
}

type AdminNotification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Type      string    `gorm:"size:64;not null;index" json:"type"`
	Data      string    `gorm:"type:text;not null" json:"data"`
	IsRead    bool      `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// All lists every table the application owns, in dependency order.
func All() []any {
	return []any{
		&FoodMaker{},
		&MenuItem{},
		&CustomerAddress{},
		&Order{},
		&OrderItem{},
		&OrderIdempotencyKey{},
		&UserProfile{},
		&FoodMakerVerification{},
		&AdminNotification{},
	}
}
