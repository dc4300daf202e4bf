package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	domainbooking "villastay/internal/domain/booking"
	domaincatalog "villastay/internal/domain/catalog"
	domainledger "villastay/internal/domain/ledger"
	domainpricing "villastay/internal/domain/pricing"
	domainproperty "villastay/internal/domain/property"
	domainrange "villastay/internal/domain/shared/daterange"
)

// respondError translates domain sentinels into HTTP statuses. Unknown
// errors surface as 400 so a handler bug never leaks stack detail.
func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domainbooking.ErrNotFound),
		errors.Is(err, domainproperty.ErrNotFound),
		errors.Is(err, domainledger.ErrChargeNotFound),
		errors.Is(err, domaincatalog.ErrUnknownRule):
		return http.StatusNotFound
	case errors.Is(err, domainbooking.ErrRangeUnavailable),
		errors.Is(err, domainbooking.ErrOutstandingBalance),
		errors.Is(err, domainbooking.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, domainpricing.ErrInvalidStay),
		errors.Is(err, domainrange.ErrInvalidRange),
		errors.Is(err, domainbooking.ErrCheckInInPast),
		errors.Is(err, domainbooking.ErrOverCapacity),
		errors.Is(err, domainbooking.ErrInvalidGuests),
		errors.Is(err, domainledger.ErrInvalidQuantity),
		errors.Is(err, domainledger.ErrInvalidType),
		errors.Is(err, domainledger.ErrNegativeAmount),
		errors.Is(err, domaincatalog.ErrNegativeAmount),
		errors.Is(err, domaincatalog.ErrPercentageRange),
		errors.Is(err, domaincatalog.ErrSeasonWindow),
		errors.Is(err, domaincatalog.ErrVariantDetails):
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}
