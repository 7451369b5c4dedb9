package models

import (
	"time"

	"gorm.io/datatypes"
)

// InteractionCheck is one saved "can I eat this?" lookup. Rows are append
// only; the client never edits a check, it only deletes or clears them.
type InteractionCheck struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	UserID             uint           `gorm:"index;not null" json:"-"`
	FoodName           string         `gorm:"size:255;not null" json:"food_name"`
	HadInteraction     bool           `json:"had_interaction"`
	InteractionCount   int            `json:"interaction_count"`
	MaxSeverity        *string        `gorm:"size:20" json:"max_severity"`
	MedicationsChecked datatypes.JSON `json:"medications_checked"`
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`
}
