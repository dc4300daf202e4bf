package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"villastay/internal/app/commands"
	ChargesApp "villastay/internal/app/handlers/charges"
	domaincatalog "villastay/internal/domain/catalog"
	domainledger "villastay/internal/domain/ledger"
)

type ChargesHandler struct {
	Commands commands.Bus
}

type addChargeRequest struct {
	RuleID      string          `json:"rule_id,omitempty"`
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	ChargeType  string          `json:"charge_type,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Quantity    int             `json:"quantity"`
}

func (h ChargesHandler) Add(c *gin.Context) {
	var req addChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := ChargesApp.AddChargeCommand{
		ChargeID:    uuid.NewString(),
		BookingID:   c.Param("id"),
		RuleID:      req.RuleID,
		Name:        req.Name,
		Description: req.Description,
		ChargeType:  domaincatalog.ChargeType(req.ChargeType),
		Amount:      req.Amount,
		Quantity:    req.Quantity,
	}
	charge, err := commands.Dispatch[ChargesApp.AddChargeCommand, *domainledger.ExtraCharge](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, chargeResponseFrom(charge))
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h ChargesHandler) UpdateQuantity(c *gin.Context) {
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := ChargesApp.UpdateQuantityCommand{
		ChargeID:  c.Param("chargeID"),
		BookingID: c.Param("id"),
		Quantity:  req.Quantity,
	}
	charge, err := commands.Dispatch[ChargesApp.UpdateQuantityCommand, *domainledger.ExtraCharge](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, chargeResponseFrom(charge))
}

func (h ChargesHandler) Remove(c *gin.Context) {
	cmd := ChargesApp.RemoveChargeCommand{
		ChargeID:  c.Param("chargeID"),
		BookingID: c.Param("id"),
	}
	if _, err := commands.Dispatch[ChargesApp.RemoveChargeCommand, struct{}](c.Request.Context(), h.Commands, cmd); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type chargeResponse struct {
	ID          string          `json:"id"`
	BookingID   string          `json:"booking_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	ChargeType  string          `json:"charge_type"`
	Amount      decimal.Decimal `json:"amount"`
	Quantity    int             `json:"quantity"`
	CreatedAt   time.Time       `json:"created_at"`
}

func chargeResponseFrom(charge *domainledger.ExtraCharge) chargeResponse {
	return chargeResponse{
		ID:          string(charge.ID),
		BookingID:   charge.BookingID,
		Name:        charge.Name,
		Description: charge.Description,
		ChargeType:  string(charge.Type),
		Amount:      charge.Amount,
		Quantity:    charge.Quantity,
		CreatedAt:   charge.CreatedAt,
	}
}

var _ ChargesHTTP = ChargesHandler{}
