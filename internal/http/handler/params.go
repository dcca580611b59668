package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// pathID parses an int64 path parameter, replying 400 itself on failure.
// Callers bail out when ok is false.
func pathID(c *gin.Context, name string) (int64, bool) {
	value, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || value <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return value, true
}
