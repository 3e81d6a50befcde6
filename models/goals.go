package models

import (
	"gorm.io/gorm"
)

// Goal direction.
const (
	GoalLose     = "lose"
	GoalMaintain = "maintain"
	GoalGain     = "gain"
)

// UserGoals is the per-user derived target set. One row per user, created
// lazily on first access. ManualOverride marks targets the user edited by
// hand: profile edits leave those alone until the user explicitly asks for a
// fresh derivation.
type UserGoals struct {
	gorm.Model
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`

	GoalType     string  `gorm:"type:varchar(16)" json:"goal_type"`
	WeeklyGoalKg float64 `json:"weekly_goal_kg"`

	DailyCalories float64 `json:"daily_calories"`
	DailyProteinG float64 `json:"daily_protein_g"`
	DailyCarbsG   float64 `json:"daily_carbs_g"`
	DailyFatG     float64 `json:"daily_fat_g"`

	ManualOverride bool `json:"manual_override"`
}
