package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nutrilog/common"
	"nutrilog/config"
	"nutrilog/models"
	"nutrilog/utils"
)

// GoalService persists the derived target set. The math itself lives in
// utils.DeriveTargets; this layer owns the two write paths: derivation
// (overwrites prior derived values) and manual override (sticky until the
// user explicitly re-derives).
type GoalService struct{}

func NewGoalService() *GoalService {
	return &GoalService{}
}

// GetOrCreate returns the user's goals row, creating a default one on first
// access. The unique index on user_id plus ON CONFLICT DO NOTHING makes the
// upsert atomic: two concurrent first requests cannot leave two rows, the
// loser of the insert just reads the winner's row.
func (s *GoalService) GetOrCreate(userID uint) (*models.UserGoals, error) {
	goals := models.UserGoals{UserID: userID, GoalType: models.GoalMaintain}
	err := config.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&goals).Error
	if err != nil {
		return nil, fmt.Errorf("%w: creating goals: %v", common.ErrInternal, err)
	}
	// Re-read either way so the caller always sees the stored row.
	var stored models.UserGoals
	if err := config.DB.Where("user_id = ?", userID).First(&stored).Error; err != nil {
		return nil, fmt.Errorf("%w: loading goals: %v", common.ErrInternal, err)
	}
	return &stored, nil
}

// Derive recomputes targets from the user's biometrics and persists them,
// clearing any manual override. Returns the computed breakdown alongside
// the stored row.
func (s *GoalService) Derive(userID uint, now time.Time) (*utils.Targets, *models.UserGoals, error) {
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, common.ErrNotFound
		}
		return nil, nil, fmt.Errorf("%w: loading user: %v", common.ErrInternal, err)
	}
	if user.WeightKg <= 0 || user.HeightCm <= 0 || user.Birthday.IsZero() {
		return nil, nil, fmt.Errorf("%w: profile is missing weight, height or birthday", common.ErrValidation)
	}

	targets := utils.DeriveTargets(utils.TargetInput{
		WeightKg:       user.WeightKg,
		HeightCm:       user.HeightCm,
		Birthday:       user.Birthday,
		Gender:         user.Gender,
		ActivityLevel:  user.ActivityLevel,
		TargetWeightKg: user.TargetWeightKg,
	}, now)

	goals, err := s.GetOrCreate(userID)
	if err != nil {
		return nil, nil, err
	}
	goals.GoalType = targets.GoalType
	goals.WeeklyGoalKg = targets.WeeklyGoalKg
	goals.DailyCalories = targets.DailyCalories
	goals.DailyProteinG = targets.DailyProteinG
	goals.DailyCarbsG = targets.DailyCarbsG
	goals.DailyFatG = targets.DailyFatG
	goals.ManualOverride = false

	if err := config.DB.Save(goals).Error; err != nil {
		return nil, nil, fmt.Errorf("%w: saving goals: %v", common.ErrInternal, err)
	}
	return &targets, goals, nil
}

// RecomputeIfDerived refreshes targets after a biometric edit, but only when
// the stored goals are still derivation-owned. A manual override survives
// background profile edits until the user re-derives explicitly.
func (s *GoalService) RecomputeIfDerived(userID uint, now time.Time) error {
	goals, err := s.GetOrCreate(userID)
	if err != nil {
		return err
	}
	if goals.ManualOverride {
		return nil
	}
	_, _, err = s.Derive(userID, now)
	// A profile that is not yet complete simply keeps the defaults.
	if errors.Is(err, common.ErrValidation) {
		return nil
	}
	return err
}

// GoalOverride is the manual write path. Nil fields keep their stored value.
type GoalOverride struct {
	GoalType      *string  `json:"goal_type"`
	WeeklyGoalKg  *float64 `json:"weekly_goal_kg"`
	DailyCalories *float64 `json:"daily_calories"`
	DailyProteinG *float64 `json:"daily_protein_g"`
	DailyCarbsG   *float64 `json:"daily_carbs_g"`
	DailyFatG     *float64 `json:"daily_fat_g"`
}

// Override stores user-entered targets and marks the row manually owned.
func (s *GoalService) Override(userID uint, o GoalOverride) (*models.UserGoals, error) {
	if o.GoalType != nil {
		switch *o.GoalType {
		case models.GoalLose, models.GoalMaintain, models.GoalGain:
		default:
			return nil, fmt.Errorf("%w: unknown goal type %q", common.ErrValidation, *o.GoalType)
		}
	}
	if o.DailyCalories != nil && *o.DailyCalories < 0 {
		return nil, fmt.Errorf("%w: daily_calories must not be negative", common.ErrValidation)
	}

	goals, err := s.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	if o.GoalType != nil {
		goals.GoalType = *o.GoalType
	}
	if o.WeeklyGoalKg != nil {
		goals.WeeklyGoalKg = *o.WeeklyGoalKg
	}
	if o.DailyCalories != nil {
		goals.DailyCalories = *o.DailyCalories
	}
	if o.DailyProteinG != nil {
		goals.DailyProteinG = *o.DailyProteinG
	}
	if o.DailyCarbsG != nil {
		goals.DailyCarbsG = *o.DailyCarbsG
	}
	if o.DailyFatG != nil {
		goals.DailyFatG = *o.DailyFatG
	}
	goals.ManualOverride = true

	if err := config.DB.Save(goals).Error; err != nil {
		return nil, fmt.Errorf("%w: saving goals: %v", common.ErrInternal, err)
	}
	return goals, nil
}
