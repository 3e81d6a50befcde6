package models

import "gorm.io/gorm"

// FoodRecord is a cached catalog row from the external food database. The
// log never joins back to it at read time: each LogItem keeps its own
// snapshot, so editing or purging catalog rows cannot rewrite history.
type FoodRecord struct {
	gorm.Model
	ProviderID         string `gorm:"type:varchar(255);uniqueIndex;not null" json:"provider_id"`
	Barcode            string `gorm:"type:varchar(64);index" json:"barcode,omitempty"`
	Name               string `gorm:"not null" json:"name"`
	Brand              string `json:"brand"`
	ServingDescription string `json:"serving_description"`

	// Per-serving amounts as reported by the provider.
	Nutrients NutrientVector `gorm:"type:jsonb" json:"nutrients"`
}
