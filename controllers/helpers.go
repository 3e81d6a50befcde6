package controllers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"nutrilog/common"
)

func ownerID(c *gin.Context) uint {
	return c.MustGet("userID").(uint)
}

// respondErr maps a taxonomy error onto its HTTP status. The wrapped detail
// goes to the client as-is; controllers never leak raw store errors beyond
// the sanitized message services build.
func respondErr(c *gin.Context, err error) {
	msg := err.Error()
	// Strip the sentinel prefix; the status code already says it.
	if i := strings.Index(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}
	c.JSON(common.HTTPStatus(err), gin.H{"error": msg})
}
