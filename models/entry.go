package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Meal types an entry may be filed under.
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
)

// How the entry was captured.
const (
	MethodManual  = "manual"
	MethodBarcode = "barcode"
	MethodPhoto   = "photo"
	MethodSearch  = "search"
)

// MealTypes is the fixed bucket order used by the daily summary.
var MealTypes = []string{MealBreakfast, MealLunch, MealDinner, MealSnack}

func ValidMealType(t string) bool {
	for _, m := range MealTypes {
		if t == m {
			return true
		}
	}
	return false
}

func ValidEntryMethod(m string) bool {
	switch m {
	case MethodManual, MethodBarcode, MethodPhoto, MethodSearch:
		return true
	}
	return false
}

// FoodLogEntry is one logged meal/snack event. Totals is a cache of
// AggregateItems(Items) maintained by the entry service on every mutation;
// nothing else writes it. UpdateCounter goes up by exactly one per accepted
// mutation, so a client holding a stale counter knows its copy is old.
type FoodLogEntry struct {
	ID      string `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID uint   `gorm:"index:idx_entries_owner_date;not null" json:"owner_id"`

	// LoggedDate is the calendar day the entry belongs to (grouping and
	// queries); LoggedAt is the precise instant the food was eaten.
	LoggedDate  string    `gorm:"type:varchar(10);index:idx_entries_owner_date;not null" json:"logged_date"`
	LoggedAt    time.Time `json:"logged_at"`
	MealType    string    `gorm:"type:varchar(16)" json:"meal_type"`
	EntryMethod string    `gorm:"type:varchar(16)" json:"entry_method"`

	Items  []LogItem      `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	Totals NutrientVector `gorm:"type:jsonb" json:"totals"`

	UpdateCounter uint64         `gorm:"not null;default:0" json:"update_counter"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (e *FoodLogEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// LogItem is one food contribution within an entry. Nutrients holds the
// as-logged amounts (already scaled by quantity and serving multiplier).
// FoodName/FoodBrand/ServingDescription are a snapshot of what the user saw
// when logging; they deliberately stay frozen even if the source food record
// is edited or removed later.
type LogItem struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	FoodLogEntryID string `gorm:"type:uuid;index;not null" json:"-"`

	Position           int     `gorm:"not null" json:"position"`
	Quantity           float64 `json:"quantity"`
	ServingMultiplier  float64 `json:"serving_multiplier"`
	FoodName           string  `json:"food_name"`
	FoodBrand          string  `json:"food_brand"`
	ServingDescription string  `json:"serving_description"`

	Nutrients NutrientVector `gorm:"type:jsonb" json:"nutrients"`

	CreatedAt time.Time `json:"created_at"`
}

// DateLayout is the wire and storage format for LoggedDate.
const DateLayout = "2006-01-02"
