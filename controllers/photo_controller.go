package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"nutrilog/common"
	"nutrilog/services"
	"nutrilog/utils"
)

// RecognizePhoto uploads the shot and returns candidate foods with
// confidence. The client confirms candidates, looks up nutrients and logs
// them as ordinary items; recognition itself never writes the log.
func RecognizePhoto(c *gin.Context) {
	var req struct {
		Image string `json:"image" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := services.DecodeImageDataURI(req.Image)
	if err != nil {
		respondErr(c, err)
		return
	}

	key, err := utils.UploadMealPhoto(c.Request.Context(), ownerID(c), data, "image/jpeg")
	if err != nil {
		respondErr(c, fmt.Errorf("%w: uploading photo: %v", common.ErrUpstreamUnavailable, err))
		return
	}

	rek, err := services.NewRekognitionService(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	candidates, err := rek.Recognize(c.Request.Context(), data)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"photo_key":  key,
		"candidates": candidates,
	})
}
