// Package cache is the device-local mirror of the food log. The sync
// coordinator is its only writer; it may be stale but never holds a write
// the server has not acknowledged.
package cache

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"nutrilog/models"
)

// cachedDay records that a whole day was mirrored, and when. Fallback reads
// distinguish "day cached but empty" from "never fetched" through it.
type cachedDay struct {
	Date      string `gorm:"primaryKey;type:varchar(10)"`
	FetchedAt time.Time
}

type Cache struct {
	db *gorm.DB
}

// Open creates or opens the sqlite mirror at path. ":memory:" works for
// tests.
func Open(path string) (*Cache, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}
	// Single connection: the coordinator is the only writer, and one
	// connection keeps ":memory:" databases coherent.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&models.FoodLogEntry{}, &models.LogItem{}, &cachedDay{}); err != nil {
		return nil, fmt.Errorf("migrating cache db: %w", err)
	}
	return &Cache{db: db}, nil
}

// ReplaceDay mirrors the authoritative entry set for a date, dropping
// whatever the cache held for it before.
func (c *Cache) ReplaceDay(date string, entries []models.FoodLogEntry) error {
	return c.db.Transaction(func(tx *gorm.DB) error {
		var old []models.FoodLogEntry
		if err := tx.Unscoped().Where("logged_date = ?", date).Find(&old).Error; err != nil {
			return err
		}
		for _, e := range old {
			if err := tx.Unscoped().Where("food_log_entry_id = ?", e.ID).Delete(&models.LogItem{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Unscoped().Where("logged_date = ?", date).Delete(&models.FoodLogEntry{}).Error; err != nil {
			return err
		}

		for i := range entries {
			e := entries[i]
			items := e.Items
			e.Items = nil
			if err := tx.Create(&e).Error; err != nil {
				return err
			}
			// The wire format omits the parent id on items; restore it.
			for j := range items {
				items[j].FoodLogEntryID = e.ID
			}
			if len(items) > 0 {
				if err := tx.Create(&items).Error; err != nil {
					return err
				}
			}
		}

		day := cachedDay{Date: date, FetchedAt: time.Now().UTC()}
		return tx.Save(&day).Error
	})
}

// Day returns the cached entries for date and whether the day was ever
// mirrored. An empty slice with ok=true means "cached, nothing logged".
func (c *Cache) Day(date string) ([]models.FoodLogEntry, bool, error) {
	var day cachedDay
	err := c.db.First(&day, "date = ?", date).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entries []models.FoodLogEntry
	err = c.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("logged_date = ?", date).
		Order("logged_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, false, err
	}
	return entries, true, nil
}

// UpsertEntry mirrors one server-acknowledged entry.
func (c *Cache) UpsertEntry(entry *models.FoodLogEntry) error {
	return c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("food_log_entry_id = ?", entry.ID).Delete(&models.LogItem{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("id = ?", entry.ID).Delete(&models.FoodLogEntry{}).Error; err != nil {
			return err
		}
		e := *entry
		items := e.Items
		e.Items = nil
		if err := tx.Create(&e).Error; err != nil {
			return err
		}
		for j := range items {
			items[j].FoodLogEntryID = e.ID
		}
		if len(items) > 0 {
			return tx.Create(&items).Error
		}
		return nil
	})
}

// RemoveEntry drops an entry after the server acknowledged its deletion.
// The mirror hard-deletes: audit retention is the server's job.
func (c *Cache) RemoveEntry(id string) error {
	return c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("food_log_entry_id = ?", id).Delete(&models.LogItem{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("id = ?", id).Delete(&models.FoodLogEntry{}).Error
	})
}

// Entry returns one cached entry by id.
func (c *Cache) Entry(id string) (*models.FoodLogEntry, bool, error) {
	var entry models.FoodLogEntry
	err := c.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&entry, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &entry, true, nil
}
