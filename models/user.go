package models

import (
	"time"

	"gorm.io/gorm"
)

// Activity levels recognized by the target derivation.
const (
	ActivitySedentary  = "sedentary"
	ActivityLight      = "light"
	ActivityModerate   = "moderate"
	ActivityActive     = "active"
	ActivityVeryActive = "very_active"
)

const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// User carries the account plus the biometric profile the goal derivation
// reads. Biometrics live inline on the user row, one row per account.
type User struct {
	gorm.Model
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	FullName string `json:"full_name"`

	Birthday       time.Time `json:"birthday"`
	Gender         string    `gorm:"type:varchar(16)" json:"gender"`
	HeightCm       float64   `json:"height_cm"`
	WeightKg       float64   `json:"weight_kg"`
	TargetWeightKg float64   `json:"target_weight_kg"`
	ActivityLevel  string    `gorm:"type:varchar(16)" json:"activity_level"`

	Onboarded bool `json:"onboarded"`
}
