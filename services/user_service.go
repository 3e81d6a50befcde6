package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"nutrilog/common"
	"nutrilog/config"
	"nutrilog/models"
	"nutrilog/utils"
)

// ProfileInput is the biometric update payload. Zero-valued fields are
// left untouched so clients can patch a single attribute.
type ProfileInput struct {
	FullName       string  `json:"full_name"`
	Birthday       string  `json:"birthday"` // YYYY-MM-DD
	Gender         string  `json:"gender"`
	HeightCm       float64 `json:"height_cm"`
	WeightKg       float64 `json:"weight_kg"`
	TargetWeightKg float64 `json:"target_weight_kg"`
	ActivityLevel  string  `json:"activity_level"`
	Onboarded      *bool   `json:"onboarded"`
}

func GetUserProfile(userID uint) (map[string]interface{}, error) {
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: loading user: %v", common.ErrInternal, err)
	}

	profile := map[string]interface{}{
		"id":               user.ID,
		"email":            user.Email,
		"full_name":        user.FullName,
		"gender":           user.Gender,
		"height_cm":        user.HeightCm,
		"weight_kg":        user.WeightKg,
		"target_weight_kg": user.TargetWeightKg,
		"activity_level":   user.ActivityLevel,
		"onboarded":        user.Onboarded,
	}
	if !user.Birthday.IsZero() {
		profile["birthday"] = user.Birthday.Format(models.DateLayout)
		profile["age"] = utils.CalculateAge(user.Birthday, time.Now())
	}
	if bmi, err := utils.CalculateBMI(user.HeightCm, user.WeightKg); err == nil {
		profile["bmi"] = bmi
		profile["bmi_category"] = utils.BMICategory(bmi)
	}
	return profile, nil
}

// UpdateUserProfile patches biometrics and, when the stored goals are still
// derivation-owned, refreshes the targets from the new numbers.
func UpdateUserProfile(userID uint, input ProfileInput, goalSvc *GoalService) error {
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("%w: loading user: %v", common.ErrInternal, err)
	}

	if input.Gender != "" && input.Gender != models.GenderMale && input.Gender != models.GenderFemale {
		return fmt.Errorf("%w: unknown gender %q", common.ErrValidation, input.Gender)
	}
	if input.ActivityLevel != "" && !utils.ValidActivityLevel(input.ActivityLevel) {
		return fmt.Errorf("%w: unknown activity level %q", common.ErrValidation, input.ActivityLevel)
	}
	if input.HeightCm < 0 || input.WeightKg < 0 || input.TargetWeightKg < 0 {
		return fmt.Errorf("%w: biometric fields must not be negative", common.ErrValidation)
	}

	if input.FullName != "" {
		user.FullName = input.FullName
	}
	if input.Birthday != "" {
		birthday, err := time.Parse(models.DateLayout, input.Birthday)
		if err != nil {
			return fmt.Errorf("%w: birthday must be YYYY-MM-DD", common.ErrValidation)
		}
		user.Birthday = birthday
	}
	if input.Gender != "" {
		user.Gender = input.Gender
	}
	if input.HeightCm > 0 {
		user.HeightCm = input.HeightCm
	}
	if input.WeightKg > 0 {
		user.WeightKg = input.WeightKg
	}
	if input.TargetWeightKg > 0 {
		user.TargetWeightKg = input.TargetWeightKg
	}
	if input.ActivityLevel != "" {
		user.ActivityLevel = input.ActivityLevel
	}
	if input.Onboarded != nil {
		user.Onboarded = *input.Onboarded
	}

	if err := config.DB.Save(&user).Error; err != nil {
		return fmt.Errorf("%w: saving user: %v", common.ErrInternal, err)
	}
	return goalSvc.RecomputeIfDerived(userID, time.Now())
}
