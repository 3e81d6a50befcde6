package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"nutrilog/common"
	"nutrilog/config"
	"nutrilog/models"
)

// EntryService owns the authoritative food log. It is the only writer of
// entry totals and update counters: every accepted mutation recomputes
// totals from the item list and bumps the counter by exactly one.
type EntryService struct{}

func NewEntryService() *EntryService {
	return &EntryService{}
}

// ItemDraft is one food contribution as submitted by the client. Nutrients
// must already be scaled to the logged amount.
type ItemDraft struct {
	Quantity           float64               `json:"quantity"`
	ServingMultiplier  float64               `json:"serving_multiplier"`
	FoodName           string                `json:"food_name"`
	FoodBrand          string                `json:"food_brand"`
	ServingDescription string                `json:"serving_description"`
	Nutrients          models.NutrientVector `json:"nutrients"`
}

// EntryDraft is the create payload. Items may be empty.
type EntryDraft struct {
	LoggedDate  string      `json:"logged_date"`
	LoggedAt    time.Time   `json:"logged_at"`
	MealType    string      `json:"meal_type"`
	EntryMethod string      `json:"entry_method"`
	Items       []ItemDraft `json:"items"`
}

// EntryPatch is the update payload. Nil fields are left untouched. When
// Items is present the item list is replaced wholesale and totals are
// recomputed; a client-supplied totals value is never trusted.
// ExpectedCounter, when set, turns the write into a compare-and-set: a
// mismatch against the stored counter rejects with ErrConflict.
type EntryPatch struct {
	LoggedDate      *string      `json:"logged_date"`
	LoggedAt        *time.Time   `json:"logged_at"`
	MealType        *string      `json:"meal_type"`
	EntryMethod     *string      `json:"entry_method"`
	Items           *[]ItemDraft `json:"items"`
	ExpectedCounter *uint64      `json:"expected_counter"`
}

// ListFilter selects entries by a single date or an inclusive date range.
type ListFilter struct {
	Date string
	From string
	To   string
}

type Page struct {
	Limit  int
	Offset int
}

type EntryPage struct {
	Entries []models.FoodLogEntry `json:"entries"`
	Total   int64                 `json:"total"`
	Limit   int                   `json:"limit"`
	Offset  int                   `json:"offset"`
	HasMore bool                  `json:"has_more"`
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func validateDraftItems(items []ItemDraft) error {
	for i, it := range items {
		if it.Quantity < 0 || it.ServingMultiplier < 0 {
			return fmt.Errorf("%w: item %d: quantity must not be negative", common.ErrValidation, i)
		}
		if err := it.Nutrients.Validate(); err != nil {
			return fmt.Errorf("%w: item %d: %v", common.ErrValidation, i, err)
		}
	}
	return nil
}

func buildItems(entryID string, drafts []ItemDraft) []models.LogItem {
	items := make([]models.LogItem, 0, len(drafts))
	for i, d := range drafts {
		items = append(items, models.LogItem{
			FoodLogEntryID:     entryID,
			Position:           i,
			Quantity:           d.Quantity,
			ServingMultiplier:  d.ServingMultiplier,
			FoodName:           d.FoodName,
			FoodBrand:          d.FoodBrand,
			ServingDescription: d.ServingDescription,
			Nutrients:          d.Nutrients.Clone(),
		})
	}
	return items
}

// Create stores a new entry for ownerID. Totals are computed server-side as
// the entry is saved; the counter starts at zero.
func (s *EntryService) Create(ownerID uint, draft EntryDraft) (*models.FoodLogEntry, error) {
	if _, err := time.Parse(models.DateLayout, draft.LoggedDate); err != nil {
		return nil, fmt.Errorf("%w: logged_date must be YYYY-MM-DD", common.ErrValidation)
	}
	if !models.ValidMealType(draft.MealType) {
		return nil, fmt.Errorf("%w: unknown meal type %q", common.ErrValidation, draft.MealType)
	}
	if draft.EntryMethod != "" && !models.ValidEntryMethod(draft.EntryMethod) {
		return nil, fmt.Errorf("%w: unknown entry method %q", common.ErrValidation, draft.EntryMethod)
	}
	if err := validateDraftItems(draft.Items); err != nil {
		return nil, err
	}

	loggedAt := draft.LoggedAt
	if loggedAt.IsZero() {
		loggedAt = time.Now().UTC()
	}
	method := draft.EntryMethod
	if method == "" {
		method = models.MethodManual
	}

	entry := &models.FoodLogEntry{
		OwnerID:     ownerID,
		LoggedDate:  draft.LoggedDate,
		LoggedAt:    loggedAt,
		MealType:    draft.MealType,
		EntryMethod: method,
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(entry).Error; err != nil {
			return err
		}
		items := buildItems(entry.ID, draft.Items)
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		entry.Items = items
		entry.Totals = models.AggregateItems(items)
		return tx.Model(entry).Update("totals", entry.Totals).Error
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating entry: %v", common.ErrInternal, err)
	}
	return entry, nil
}

// Get returns the entry if it exists, is not soft-deleted and belongs to
// ownerID. A foreign or missing entry is the same NotFound.
func (s *EntryService) Get(ownerID uint, id string) (*models.FoodLogEntry, error) {
	var entry models.FoodLogEntry
	err := config.DB.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: loading entry: %v", common.ErrInternal, err)
	}
	return &entry, nil
}

// List returns a page of non-deleted entries, newest first (logged_date
// desc, then logged_at desc).
func (s *EntryService) List(ownerID uint, filter ListFilter, page Page) (*EntryPage, error) {
	limit := page.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	offset := page.Offset
	if offset < 0 {
		offset = 0
	}

	q := config.DB.Model(&models.FoodLogEntry{}).Where("owner_id = ?", ownerID)
	switch {
	case filter.Date != "":
		q = q.Where("logged_date = ?", filter.Date)
	case filter.From != "" && filter.To != "":
		q = q.Where("logged_date >= ? AND logged_date <= ?", filter.From, filter.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("%w: counting entries: %v", common.ErrInternal, err)
	}

	var entries []models.FoodLogEntry
	err := q.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("logged_date DESC").
		Order("logged_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("%w: listing entries: %v", common.ErrInternal, err)
	}

	return &EntryPage{
		Entries: entries,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(entries)) < total,
	}, nil
}

// Update applies a patch. Every accepted update bumps the counter by one;
// when the patch replaces the item list, totals are recomputed from it
// unconditionally.
func (s *EntryService) Update(ownerID uint, id string, patch EntryPatch) (*models.FoodLogEntry, error) {
	if patch.MealType != nil && !models.ValidMealType(*patch.MealType) {
		return nil, fmt.Errorf("%w: unknown meal type %q", common.ErrValidation, *patch.MealType)
	}
	if patch.EntryMethod != nil && !models.ValidEntryMethod(*patch.EntryMethod) {
		return nil, fmt.Errorf("%w: unknown entry method %q", common.ErrValidation, *patch.EntryMethod)
	}
	if patch.LoggedDate != nil {
		if _, err := time.Parse(models.DateLayout, *patch.LoggedDate); err != nil {
			return nil, fmt.Errorf("%w: logged_date must be YYYY-MM-DD", common.ErrValidation)
		}
	}
	if patch.Items != nil {
		if err := validateDraftItems(*patch.Items); err != nil {
			return nil, err
		}
	}

	var entry models.FoodLogEntry
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND owner_id = ?", id, ownerID).First(&entry).Error; err != nil {
			return err
		}
		if patch.ExpectedCounter != nil && *patch.ExpectedCounter != entry.UpdateCounter {
			return common.ErrConflict
		}

		if patch.LoggedDate != nil {
			entry.LoggedDate = *patch.LoggedDate
		}
		if patch.LoggedAt != nil {
			entry.LoggedAt = *patch.LoggedAt
		}
		if patch.MealType != nil {
			entry.MealType = *patch.MealType
		}
		if patch.EntryMethod != nil {
			entry.EntryMethod = *patch.EntryMethod
		}

		if patch.Items != nil {
			// Replace wholesale, then recompute. Hard delete here: the old
			// rows are superseded history of a live entry, not an audit trail.
			if err := tx.Unscoped().Where("food_log_entry_id = ?", entry.ID).
				Delete(&models.LogItem{}).Error; err != nil {
				return err
			}
			items := buildItems(entry.ID, *patch.Items)
			if len(items) > 0 {
				if err := tx.Create(&items).Error; err != nil {
					return err
				}
			}
			entry.Items = items
			entry.Totals = models.AggregateItems(items)
		}

		entry.UpdateCounter++
		return tx.Omit("Items").Save(&entry).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if errors.Is(err, common.ErrConflict) {
		return nil, common.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("%w: updating entry: %v", common.ErrInternal, err)
	}
	if patch.Items == nil {
		return s.Get(ownerID, id)
	}
	return &entry, nil
}

// SoftDelete marks the entry invisible to queries while keeping its rows for
// audit. The counter still bumps so clients can order the delete against
// their cached copy. expected follows the same compare-and-set rule as Update.
func (s *EntryService) SoftDelete(ownerID uint, id string, expected *uint64) error {
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var entry models.FoodLogEntry
		if err := tx.Where("id = ? AND owner_id = ?", id, ownerID).First(&entry).Error; err != nil {
			return err
		}
		if expected != nil && *expected != entry.UpdateCounter {
			return common.ErrConflict
		}
		return tx.Model(&entry).Updates(map[string]interface{}{
			"update_counter": entry.UpdateCounter + 1,
			"deleted_at":     time.Now().UTC(),
		}).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.ErrNotFound
	}
	if errors.Is(err, common.ErrConflict) {
		return common.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("%w: deleting entry: %v", common.ErrInternal, err)
	}
	return nil
}
