package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"villastay/internal/app/commands"
	BookingApp "villastay/internal/app/handlers/booking"
	"villastay/internal/app/queries"
	domainbooking "villastay/internal/domain/booking"
	"villastay/internal/domain/shared/money"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type createBookingRequest struct {
	PropertyID string    `json:"property_id"`
	GuestName  string    `json:"guest_name"`
	GuestEmail string    `json:"guest_email"`
	GuestPhone string    `json:"guest_phone"`
	GuestNIC   string    `json:"guest_nic"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Adults     int       `json:"adults"`
	Children   int       `json:"children"`
	DistanceKm float64   `json:"distance_km"`
}

func (h BookingHandler) Create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := BookingApp.RequestBookingCommand{
		CommandID:  generateCommandID(),
		PropertyID: req.PropertyID,
		GuestName:  req.GuestName,
		GuestEmail: req.GuestEmail,
		GuestPhone: req.GuestPhone,
		GuestNIC:   req.GuestNIC,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		Adults:     req.Adults,
		Children:   req.Children,
		DistanceKm: req.DistanceKm,
	}
	result, err := commands.Dispatch[BookingApp.RequestBookingCommand, *BookingApp.RequestBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) Get(c *gin.Context) {
	q := BookingApp.GetBookingQuery{BookingID: c.Param("id")}
	b, err := queries.Ask[BookingApp.GetBookingQuery, *domainbooking.Booking](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookingResponseFrom(b))
}

type confirmDepositRequest struct {
	PaymentIntent string `json:"payment_intent"`
}

func (h BookingHandler) ConfirmDeposit(c *gin.Context) {
	var req confirmDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := BookingApp.ConfirmDepositCommand{BookingID: c.Param("id"), PaymentIntent: req.PaymentIntent}
	b, err := commands.Dispatch[BookingApp.ConfirmDepositCommand, *domainbooking.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookingResponseFrom(b))
}

func (h BookingHandler) CheckIn(c *gin.Context) {
	cmd := BookingApp.CheckInCommand{BookingID: c.Param("id")}
	b, err := commands.Dispatch[BookingApp.CheckInCommand, *domainbooking.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookingResponseFrom(b))
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

func (h BookingHandler) Cancel(c *gin.Context) {
	var req cancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := BookingApp.CancelBookingCommand{BookingID: c.Param("id"), Reason: req.Reason}
	result, err := commands.Dispatch[BookingApp.CancelBookingCommand, *BookingApp.CancelBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type recordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h BookingHandler) RecordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := BookingApp.RecordPaymentCommand{BookingID: c.Param("id"), Amount: money.FromDecimal(req.Amount)}
	b, err := commands.Dispatch[BookingApp.RecordPaymentCommand, *domainbooking.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookingResponseFrom(b))
}

func (h BookingHandler) Remove(c *gin.Context) {
	cmd := BookingApp.RemoveBookingCommand{BookingID: c.Param("id")}
	if _, err := commands.Dispatch[BookingApp.RemoveBookingCommand, struct{}](c.Request.Context(), h.Commands, cmd); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type bookingResponse struct {
	ID            string    `json:"id"`
	PropertyID    string    `json:"property_id"`
	GuestName     string    `json:"guest_name"`
	GuestEmail    string    `json:"guest_email"`
	CheckIn       time.Time `json:"check_in"`
	CheckOut      time.Time `json:"check_out"`
	Adults        int       `json:"adults"`
	Children      int       `json:"children"`
	Status        string    `json:"status"`
	TotalCost     string    `json:"total_cost"`
	DepositAmount string    `json:"deposit_amount"`
	AmountPaid    string    `json:"amount_paid"`
	PaymentIntent string    `json:"payment_intent,omitempty"`
}

func bookingResponseFrom(b *domainbooking.Booking) bookingResponse {
	return bookingResponse{
		ID:            string(b.ID),
		PropertyID:    string(b.PropertyID),
		GuestName:     b.Guest.Name,
		GuestEmail:    b.Guest.Email,
		CheckIn:       b.Range.CheckIn,
		CheckOut:      b.Range.CheckOut,
		Adults:        b.Guests.Adults,
		Children:      b.Guests.Children,
		Status:        string(b.Status),
		TotalCost:     b.TotalCost.String(),
		DepositAmount: b.DepositAmount.String(),
		AmountPaid:    b.AmountPaid.String(),
		PaymentIntent: b.PaymentIntent,
	}
}

func generateCommandID() string {
	return uuid.NewString()
}

var _ BookingHTTP = BookingHandler{}
