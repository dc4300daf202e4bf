package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	AvailabilityApp "villastay/internal/app/handlers/availability"
	"villastay/internal/app/queries"
)

type AvailabilityHandler struct {
	Queries queries.Bus
}

// CheckRange answers GET /properties/:id/availability?check_in=...&check_out=...
// with whether the whole half-open range is free.
func (h AvailabilityHandler) CheckRange(c *gin.Context) {
	checkIn, err := parseDate(c.Query("check_in"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_in"})
		return
	}
	checkOut, err := parseDate(c.Query("check_out"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_out"})
		return
	}
	q := AvailabilityApp.CheckRangeQuery{
		PropertyID: c.Param("id"),
		CheckIn:    checkIn,
		CheckOut:   checkOut,
	}
	result, err := queries.Ask[AvailabilityApp.CheckRangeQuery, AvailabilityApp.CheckRangeResult](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// parseDate accepts date-only or RFC3339 timestamps.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
