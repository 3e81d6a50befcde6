package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutrilog/models"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(":memory:")
	require.NoError(t, err)
	return c
}

func sampleEntry(id, date string, calories float64) models.FoodLogEntry {
	return models.FoodLogEntry{
		ID:         id,
		OwnerID:    1,
		LoggedDate: date,
		LoggedAt:   time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC),
		MealType:   models.MealBreakfast,
		Totals:     models.NutrientVector{models.NutrCalories: calories},
		Items: []models.LogItem{{
			Position: 0,
			Quantity: 1,
			FoodName: "Oatmeal",
			Nutrients: models.NutrientVector{
				models.NutrCalories: calories,
			},
		}},
	}
}

func TestDayNotCached(t *testing.T) {
	c := openTestCache(t)
	entries, ok, err := c.Day("2025-06-15")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, entries)
}

func TestReplaceDayRoundTrip(t *testing.T) {
	c := openTestCache(t)
	in := []models.FoodLogEntry{
		sampleEntry("e1", "2025-06-15", 200),
		sampleEntry("e2", "2025-06-15", 350),
	}
	require.NoError(t, c.ReplaceDay("2025-06-15", in))

	entries, ok, err := c.Day("2025-06-15")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, entries, 2)
	assert.Equal(t, "e1", entries[0].ID)
	require.Len(t, entries[0].Items, 1)
	assert.Equal(t, 200.0, entries[0].Items[0].Nutrients.Get(models.NutrCalories))
}

func TestReplaceDayDropsStaleEntries(t *testing.T) {
	c := openTestCache(t)
	require.NoError(t, c.ReplaceDay("2025-06-15", []models.FoodLogEntry{
		sampleEntry("stale", "2025-06-15", 100),
	}))
	require.NoError(t, c.ReplaceDay("2025-06-15", []models.FoodLogEntry{
		sampleEntry("fresh", "2025-06-15", 400),
	}))

	entries, ok, err := c.Day("2025-06-15")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, entries, 1)
	assert.Equal(t, "fresh", entries[0].ID)
}

func TestReplaceDayEmptyStillMarksCached(t *testing.T) {
	c := openTestCache(t)
	require.NoError(t, c.ReplaceDay("2025-06-15", nil))

	entries, ok, err := c.Day("2025-06-15")
	require.NoError(t, err)
	assert.True(t, ok, "an empty day is still a cached day")
	assert.Len(t, entries, 0)
}

func TestUpsertEntryReplacesItems(t *testing.T) {
	c := openTestCache(t)
	e := sampleEntry("e1", "2025-06-15", 200)
	require.NoError(t, c.UpsertEntry(&e))

	e.Totals = models.NutrientVector{models.NutrCalories: 999}
	e.Items = []models.LogItem{
		{Position: 0, FoodName: "Toast", Nutrients: models.NutrientVector{models.NutrCalories: 500}},
		{Position: 1, FoodName: "Eggs", Nutrients: models.NutrientVector{models.NutrCalories: 499}},
	}
	require.NoError(t, c.UpsertEntry(&e))

	got, ok, err := c.Entry("e1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 999.0, got.Totals.Get(models.NutrCalories))
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Toast", got.Items[0].FoodName)
}

func TestRemoveEntry(t *testing.T) {
	c := openTestCache(t)
	e := sampleEntry("e1", "2025-06-15", 200)
	require.NoError(t, c.UpsertEntry(&e))
	require.NoError(t, c.RemoveEntry("e1"))

	_, ok, err := c.Entry("e1")
	require.NoError(t, err)
	assert.False(t, ok)

	// Removing an unknown id is a no-op, not an error.
	assert.NoError(t, c.RemoveEntry("ghost"))
}
