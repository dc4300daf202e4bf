package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"villastay/internal/infra/config"
	"villastay/internal/infra/obs"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	ConfirmDeposit(c *gin.Context)
	CheckIn(c *gin.Context)
	Cancel(c *gin.Context)
	RecordPayment(c *gin.Context)
	Remove(c *gin.Context)
}

type AvailabilityHTTP interface {
	CheckRange(c *gin.Context)
}

type PropertyHTTP interface {
	List(c *gin.Context)
	Get(c *gin.Context)
}

type CatalogHTTP interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	SetActive(c *gin.Context)
	Applicable(c *gin.Context)
}

type ChargesHTTP interface {
	Add(c *gin.Context)
	UpdateQuantity(c *gin.Context)
	Remove(c *gin.Context)
}

type InvoiceHTTP interface {
	Get(c *gin.Context)
	Checkout(c *gin.Context)
}

type Handlers struct {
	Booking      BookingHTTP
	Availability AvailabilityHTTP
	Property     PropertyHTTP
	Catalog      CatalogHTTP
	Charges      ChargesHTTP
	Invoice      InvoiceHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Property != nil {
		api.GET("/properties", h.Property.List)
		api.GET("/properties/:id", h.Property.Get)
	}
	if h.Availability != nil {
		api.GET("/properties/:id/availability", h.Availability.CheckRange)
	}
	if h.Catalog != nil {
		api.GET("/charge-rules", h.Catalog.List)
		api.POST("/charge-rules", h.Catalog.Create)
		api.PATCH("/charge-rules/:id/active", h.Catalog.SetActive)
		api.GET("/charge-rules/applicable", h.Catalog.Applicable)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.GET("/bookings/:id", h.Booking.Get)
		api.POST("/bookings/:id/confirm-deposit", h.Booking.ConfirmDeposit)
		api.POST("/bookings/:id/check-in", h.Booking.CheckIn)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
		api.POST("/bookings/:id/payments", h.Booking.RecordPayment)
		api.DELETE("/bookings/:id", h.Booking.Remove)
	}
	if h.Charges != nil {
		api.POST("/bookings/:id/charges", h.Charges.Add)
		api.PATCH("/bookings/:id/charges/:chargeID/quantity", h.Charges.UpdateQuantity)
		api.DELETE("/bookings/:id/charges/:chargeID", h.Charges.Remove)
	}
	if h.Invoice != nil {
		api.GET("/bookings/:id/invoice", h.Invoice.Get)
		api.POST("/bookings/:id/checkout", h.Invoice.Checkout)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
