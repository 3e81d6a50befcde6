package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutrilog/common"
	"nutrilog/config"
	"nutrilog/models"
)

func twoItemDraft(date string) EntryDraft {
	return EntryDraft{
		LoggedDate: date,
		LoggedAt:   time.Date(2025, 6, 15, 12, 30, 0, 0, time.UTC),
		MealType:   models.MealLunch,
		Items: []ItemDraft{
			{
				Quantity: 1, ServingMultiplier: 1,
				FoodName: "Chicken wrap", FoodBrand: "Deli", ServingDescription: "1 wrap",
				Nutrients: models.NutrientVector{
					models.NutrCalories: 300, models.NutrProteinG: 20,
					models.NutrCarbsG: 30, models.NutrFatG: 10,
				},
			},
			{
				Quantity: 1, ServingMultiplier: 1,
				FoodName: "Apple", ServingDescription: "1 medium",
				Nutrients: models.NutrientVector{
					models.NutrCalories: 150, models.NutrProteinG: 5,
					models.NutrCarbsG: 20, models.NutrFatG: 5,
				},
			},
		},
	}
}

func TestCreateComputesTotals(t *testing.T) {
	setupDB(t)
	svc := NewEntryService()

	entry, err := svc.Create(1, twoItemDraft("2025-06-15"))
	require.NoError(t, err)

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, uint64(0), entry.UpdateCounter)
	assert.Len(t, entry.Items, 2)
	assert.Equal(t, 450.0, entry.Totals.Get(models.NutrCalories))
	assert.Equal(t, 25.0, entry.Totals.Get(models.NutrProteinG))
	assert.Equal(t, 50.0, entry.Totals.Get(models.NutrCarbsG))
	assert.Equal(t, 15.0, entry.Totals.Get(models.NutrFatG))

	// Totals survive a round trip through the store.
	loaded, err := svc.Get(1, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.Totals, loaded.Totals)
	assert.Equal(t, models.AggregateItems(loaded.Items), loaded.Totals)
}

func TestCreateEmptyItems(t *testing.T) {
	setupDB(t)
	svc := NewEntryService()

	draft := twoItemDraft("2025-06-15")
	draft.Items = nil
	entry, err := svc.Create(1, draft)
	require.NoError(t, err)

	assert.Len(t, entry.Items, 0)
	assert.Equal(t, 0.0, entry.Totals.Get(models.NutrCalories))
}

func TestCreateValidation(t *testing.T) {
	setupDB(t)
	svc := NewEntryService()

	draft := twoItemDraft("2025-06-15")
	draft.MealType = "brunch"
	_, err := svc.Create(1, draft)
	assert.ErrorIs(t, err, common.ErrValidation)

	draft = twoItemDraft("june 15")
	_, err = svc.Create(1, draft)
	assert.ErrorIs(t, err, common.ErrValidation)

	draft = twoItemDraft("2025-06-15")
	draft.Items[0].Nutrients = models.NutrientVector{models.NutrCalories: -5}
	_, err = svc.Create(1, draft)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestUpdateRecomputesTotalsAndBumpsCounter(t *testing.T) {
	setupDB(t)
	svc := NewEntryService()

	entry, err := svc.Create(1, twoItemDraft("2025-06-15"))
	require.NoError(t, err)

	newItems := []ItemDraft{{
		Quantity: 2, ServingMultiplier: 1,
		FoodName: "Yogurt", ServingDescription: "1 cup",
		Nutrients: models.NutrientVector{models.NutrCalories: 120, models.NutrProteinG: 11},
	}}
	updated, err := svc.Update(1, entry.ID, EntryPatch{Items: &newItems})
	require.NoError(t, err)

	assert.Equal(t, uint64(1), updated.UpdateCounter)
	assert.Len(t, updated.Items, 1)
	assert.Equal(t, 120.0, updated.Totals.Get(models.NutrCalories))
	assert.Equal(t, 11.0, updated.Totals.Get(models.NutrProteinG))
	assert.Equal(t, 0.0, updated.Totals.Get(models.NutrCarbsG))

	// A patch without items keeps totals and still bumps the counter.
	meal := models.MealDinner
	updated, err = svc.Update(1, entry.ID, EntryPatch{MealType: &meal})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), updated.UpdateCounter)
	assert.Equal(t, models.MealDinner, updated.MealType)
	assert.Equal(t, 120.0, updated.Totals.Get(models.NutrCalories))
}

func TestUpdateConflictLeavesCounterUntouched(t *testing.T) {
	setupDB(t)
	svc := NewEntryService()

	entry, err := svc.Create(1, twoItemDraft("2025-06-15"))
	require.NoError(t, err)

	meal := models.MealSnack
	_, err = svc.Update(1, entry.ID, EntryPatch{MealType: &meal})
	require.NoError(t, err)

	stale := uint64(0)
	_, err = svc.Update(1, entry.ID, EntryPatch{MealType: &meal, ExpectedCounter: &stale})
	assert.ErrorIs(t, err, common.ErrConflict)

	// The failed mutation must not move the counter.
	current, err := svc.Get(1, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), current.UpdateCounter)

	// Matching counter goes through.
	match := uint64(1)
	updated, err := svc.Update(1, entry.ID, EntryPatch{MealType: &meal, ExpectedCounter: &match})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), updated.UpdateCounter)
}

func TestOwnershipReportsNotFound(t *testing.T) {
	setupDB(t)
	svc := NewEntryService()

	entry, err := svc.Create(1, twoItemDraft("2025-06-15"))
	require.NoError(t, err)

	_, err = svc.Get(2, entry.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	meal := models.MealSnack
	_, err = svc.Update(2, entry.ID, EntryPatch{MealType: &meal})
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = svc.SoftDelete(2, entry.ID, nil)
	assert.ErrorIs(t, err, common.ErrNotFound)

	// The rightful owner still sees it untouched.
	got, err := svc.Get(1, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got.UpdateCounter)
}

func TestSoftDeleteHidesEntry(t *testing.T) {
	setupDB(t)
	svc := NewEntryService()

	keep, err := svc.Create(1, twoItemDraft("2025-06-15"))
	require.NoError(t, err)
	gone, err := svc.Create(1, twoItemDraft("2025-06-15"))
	require.NoError(t, err)

	require.NoError(t, svc.SoftDelete(1, gone.ID, nil))

	_, err = svc.Get(1, gone.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	page, err := svc.List(1, ListFilter{Date: "2025-06-15"}, Page{})
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, keep.ID, page.Entries[0].ID)
	assert.Equal(t, int64(1), page.Total)

	summary, err := svc.Summary(1, "2025-06-15")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.MealCount)
	assert.Equal(t, 450.0, summary.Totals.Get(models.NutrCalories))

	// The row is retained for audit, just invisible.
	var raw models.FoodLogEntry
	require.NoError(t, config.DB.Unscoped().First(&raw, "id = ?", gone.ID).Error)
	assert.True(t, raw.DeletedAt.Valid)
	assert.Equal(t, uint64(1), raw.UpdateCounter)

	// Deleting twice reports NotFound: the visible entry is gone.
	assert.ErrorIs(t, svc.SoftDelete(1, gone.ID, nil), common.ErrNotFound)
}

func TestListOrderingAndRange(t *testing.T) {
	setupDB(t)
	svc := NewEntryService()

	mk := func(date string, at time.Time) *models.FoodLogEntry {
		d := twoItemDraft(date)
		d.LoggedAt = at
		e, err := svc.Create(1, d)
		require.NoError(t, err)
		return e
	}
	day1Morning := mk("2025-06-14", time.Date(2025, 6, 14, 8, 0, 0, 0, time.UTC))
	day1Evening := mk("2025-06-14", time.Date(2025, 6, 14, 19, 0, 0, 0, time.UTC))
	day2 := mk("2025-06-15", time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC))
	mk("2025-06-20", time.Date(2025, 6, 20, 8, 0, 0, 0, time.UTC))

	page, err := svc.List(1, ListFilter{From: "2025-06-14", To: "2025-06-15"}, Page{})
	require.NoError(t, err)
	require.Len(t, page.Entries, 3)
	// logged_date desc, then logged_at desc.
	assert.Equal(t, day2.ID, page.Entries[0].ID)
	assert.Equal(t, day1Evening.ID, page.Entries[1].ID)
	assert.Equal(t, day1Morning.ID, page.Entries[2].ID)
}

func TestPaginationHasMore(t *testing.T) {
	setupDB(t)
	svc := NewEntryService()

	for i := 0; i < 5; i++ {
		d := twoItemDraft("2025-06-15")
		d.LoggedAt = time.Date(2025, 6, 15, 8+i, 0, 0, 0, time.UTC)
		_, err := svc.Create(1, d)
		require.NoError(t, err)
	}

	cases := []struct {
		limit, offset int
		wantCount     int
		wantHasMore   bool
	}{
		{2, 0, 2, true},
		{2, 2, 2, true},
		{2, 4, 1, false},
		{10, 0, 5, false},
		{5, 5, 0, false},
		{3, 4, 1, false},
	}
	for _, tc := range cases {
		page, err := svc.List(1, ListFilter{Date: "2025-06-15"}, Page{Limit: tc.limit, Offset: tc.offset})
		require.NoError(t, err)
		label := fmt.Sprintf("limit=%d offset=%d", tc.limit, tc.offset)
		assert.Len(t, page.Entries, tc.wantCount, label)
		assert.Equal(t, int64(5), page.Total, label)
		assert.Equal(t, tc.wantHasMore, page.HasMore, label)
		// The invariant the clients rely on.
		assert.Equal(t, int64(page.Offset+len(page.Entries)) < page.Total, page.HasMore, label)
	}
}
