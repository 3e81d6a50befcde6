package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"nutrilog/common"
	"nutrilog/config"
	"nutrilog/models"
)

// DaySummary is one calendar day of the log rolled up: day totals, the
// fixed four meal buckets and counts. Totals carry display rounding
// (calories integer, macro grams to 0.1); entry-level totals inside the
// buckets stay full precision.
type DaySummary struct {
	Date      string                           `json:"date"`
	Totals    models.NutrientVector            `json:"totals"`
	ItemCount int                              `json:"item_count"`
	MealCount int                              `json:"meal_count"`
	Meals     map[string][]models.FoodLogEntry `json:"meals"`

	// Entries carrying an unrecognized meal type are counted in the day
	// totals but fit no bucket; the count makes the gap visible.
	UnbucketedCount int `json:"unbucketed_count,omitempty"`
}

// Summary aggregates all non-deleted entries of ownerID on date. Two
// passes: each entry already caches its own totals, the day total is the
// sum of those caches.
func (s *EntryService) Summary(ownerID uint, date string) (*DaySummary, error) {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", common.ErrValidation)
	}

	var entries []models.FoodLogEntry
	err := config.DB.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("owner_id = ? AND logged_date = ?", ownerID, date).
		Order("logged_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("%w: loading day entries: %v", common.ErrInternal, err)
	}

	return BuildDaySummary(date, entries), nil
}

// BuildDaySummary rolls a day's entries into a summary. Pure over its
// input; the client's offline fallback calls it on cached entries and gets
// the same result the server would produce for the same set.
func BuildDaySummary(date string, entries []models.FoodLogEntry) *DaySummary {
	summary := &DaySummary{
		Date:  date,
		Meals: make(map[string][]models.FoodLogEntry, len(models.MealTypes)),
	}
	for _, m := range models.MealTypes {
		summary.Meals[m] = []models.FoodLogEntry{}
	}

	vectors := make([]models.NutrientVector, 0, len(entries))
	for _, e := range entries {
		vectors = append(vectors, e.Totals)
		summary.ItemCount += len(e.Items)
		if models.ValidMealType(e.MealType) {
			summary.Meals[e.MealType] = append(summary.Meals[e.MealType], e)
		} else {
			summary.UnbucketedCount++
		}
	}
	summary.MealCount = len(entries)
	summary.Totals = models.SumVectors(vectors).Rounded()
	return summary
}
