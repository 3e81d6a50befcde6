package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nutrilog/models"
)

// GetDailySummary returns one day's totals, meal buckets and the current
// targets. Date defaults to today.
func GetDailySummary(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = time.Now().Format(models.DateLayout)
	}

	uid := ownerID(c)
	summary, err := entrySvc.Summary(uid, date)
	if err != nil {
		respondErr(c, err)
		return
	}

	goals, err := goalSvc.GetOrCreate(uid)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":             summary.Date,
		"totals":           summary.Totals,
		"item_count":       summary.ItemCount,
		"meal_count":       summary.MealCount,
		"meals":            summary.Meals,
		"unbucketed_count": summary.UnbucketedCount,
		"targets":          goals,
	})
}
