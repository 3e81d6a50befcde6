package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nutrilog/services"
)

var entrySvc = services.NewEntryService()

func CreateEntry(c *gin.Context) {
	var draft services.EntryDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := entrySvc.Create(ownerID(c), draft)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func ListEntries(c *gin.Context) {
	filter := services.ListFilter{
		Date: c.Query("date"),
		From: c.Query("from"),
		To:   c.Query("to"),
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	page, err := entrySvc.List(ownerID(c), filter, services.Page{Limit: limit, Offset: offset})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func GetEntry(c *gin.Context) {
	entry, err := entrySvc.Get(ownerID(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func UpdateEntry(c *gin.Context) {
	var patch services.EntryPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := entrySvc.Update(ownerID(c), c.Param("id"), patch)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func DeleteEntry(c *gin.Context) {
	var expected *uint64
	if s := c.Query("expected_counter"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "expected_counter must be a non-negative integer"})
			return
		}
		expected = &v
	}

	if err := entrySvc.SoftDelete(ownerID(c), c.Param("id"), expected); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
