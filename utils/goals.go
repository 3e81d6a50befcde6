package utils

import (
	"math"
	"time"
)

// activityMultipliers maps activity level to its TDEE multiplier. Single
// source of truth, also used to validate profile input.
var activityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

const defaultActivityMultiplier = 1.55 // moderate

// ValidActivityLevel reports whether level has a known multiplier.
func ValidActivityLevel(level string) bool {
	_, ok := activityMultipliers[level]
	return ok
}

// TargetInput is the biometric profile the derivation reads. GoalType may be
// empty, in which case it is derived from TargetWeightKg vs WeightKg.
type TargetInput struct {
	WeightKg       float64
	HeightCm       float64
	Birthday       time.Time
	Gender         string
	ActivityLevel  string
	GoalType       string
	TargetWeightKg float64
}

// Targets is the derived daily target set.
type Targets struct {
	Age           int     `json:"age"`
	BMR           float64 `json:"bmr"`
	TDEE          float64 `json:"tdee"`
	GoalType      string  `json:"goal_type"`
	WeeklyGoalKg  float64 `json:"weekly_goal_kg"`
	DailyCalories float64 `json:"daily_calories"`
	DailyProteinG float64 `json:"daily_protein_g"`
	DailyCarbsG   float64 `json:"daily_carbs_g"`
	DailyFatG     float64 `json:"daily_fat_g"`
}

// CalculateAge counts full years between birthday and now; a birthday not
// yet reached this year decrements by one.
func CalculateAge(birthday, now time.Time) int {
	age := now.Year() - birthday.Year()
	if now.Before(birthday.AddDate(age, 0, 0)) {
		age--
	}
	return age
}

// DeriveTargets computes BMR (Mifflin-St Jeor), TDEE and the daily
// calorie/macro targets from a biometric profile. Pure: same input and
// evaluation time always give the same output.
func DeriveTargets(in TargetInput, now time.Time) Targets {
	age := CalculateAge(in.Birthday, now)

	bmr := 10*in.WeightKg + 6.25*in.HeightCm - 5*float64(age)
	if in.Gender == "male" {
		bmr += 5
	} else {
		bmr -= 161
	}

	mult, ok := activityMultipliers[in.ActivityLevel]
	if !ok {
		mult = defaultActivityMultiplier
	}
	tdee := math.Round(bmr * mult)

	goalType := in.GoalType
	if goalType == "" {
		switch {
		case in.TargetWeightKg > 0 && in.TargetWeightKg < in.WeightKg:
			goalType = "lose"
		case in.TargetWeightKg > in.WeightKg:
			goalType = "gain"
		default:
			goalType = "maintain"
		}
	}

	var calories, weeklyKg float64
	switch goalType {
	case "lose":
		calories = math.Max(1200, tdee-500) // hard floor
		weeklyKg = -0.5
	case "gain":
		calories = tdee + 400
		weeklyKg = 0.35
	default:
		calories = tdee
		weeklyKg = 0
	}

	protein := math.Round(in.WeightKg * 1.8)
	fat := math.Round(0.28 * calories / 9)
	// Remainder method. May go negative at a pathologically low calorie
	// target; callers see that rather than a silently clamped value.
	carbs := math.Round((calories - protein*4 - fat*9) / 4)

	return Targets{
		Age:           age,
		BMR:           bmr,
		TDEE:          tdee,
		GoalType:      goalType,
		WeeklyGoalKg:  weeklyKg,
		DailyCalories: calories,
		DailyProteinG: protein,
		DailyCarbsG:   carbs,
		DailyFatG:     fat,
	}
}
