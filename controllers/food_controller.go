package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nutrilog/services"
)

var foodSvc = services.NewFoodService(services.NewHTTPLookup())

func SearchFoods(c *gin.Context) {
	results, err := foodSvc.Search(c.Query("q"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func LookupBarcode(c *gin.Context) {
	result, err := foodSvc.Barcode(c.Param("code"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
