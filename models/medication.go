package models

import "time"

// UserMedication is one drug on a user's list. A user may hold each drug
// name at most once; duplicates are rejected at the API layer.
type UserMedication struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;uniqueIndex:idx_user_drug;not null" json:"-"`
	DrugName    string    `gorm:"size:255;uniqueIndex:idx_user_drug;not null" json:"drug_name"`
	GenericName string    `gorm:"size:255" json:"generic_name,omitempty"`
	Dosage      string    `gorm:"size:100" json:"dosage,omitempty"`
	Frequency   string    `gorm:"size:100" json:"frequency,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
