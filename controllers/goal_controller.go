package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nutrilog/services"
)

var goalSvc = services.NewGoalService()

// GetGoals returns the stored target set, creating defaults on first access.
func GetGoals(c *gin.Context) {
	goals, err := goalSvc.GetOrCreate(ownerID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, goals)
}

// DeriveGoals recomputes targets from the biometric profile. This is the
// explicit path that overwrites a manual override.
func DeriveGoals(c *gin.Context) {
	targets, goals, err := goalSvc.Derive(ownerID(c), time.Now())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"derived": targets,
		"goals":   goals,
	})
}

// UpdateGoals is the manual override write path.
func UpdateGoals(c *gin.Context) {
	var req services.GoalOverride
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	goals, err := goalSvc.Override(ownerID(c), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, goals)
}
