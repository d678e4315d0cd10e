package httputil

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultLimit is the page size used when the client sends none.
	DefaultLimit = 50
	// MaxLimit is the largest page size accepted from a client.
	MaxLimit = 500
)

// ParsePagination parses the offset and limit query parameters.
// Offset defaults to 0, limit to DefaultLimit, and limit may not exceed MaxLimit.
func ParsePagination(c *gin.Context) (offset, limit int, err error) {
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		return 0, 0, fmt.Errorf("invalid offset parameter: must be a non-negative integer")
	}

	limit, err = ParseLimit(c)
	if err != nil {
		return 0, 0, err
	}

	return offset, limit, nil
}

// ParseLimit parses only the limit query parameter.
func ParseLimit(c *gin.Context) (int, error) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))
	if err != nil || limit < 1 || limit > MaxLimit {
		return 0, fmt.Errorf("invalid limit parameter: must be between 1 and %d", MaxLimit)
	}
	return limit, nil
}
