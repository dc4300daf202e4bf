package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"villastay/internal/app/commands"
	InvoiceApp "villastay/internal/app/handlers/invoice"
	"villastay/internal/app/queries"
	domaininvoice "villastay/internal/domain/invoice"
)

type InvoiceHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

func (h InvoiceHandler) Get(c *gin.Context) {
	q := InvoiceApp.GetInvoiceQuery{BookingID: c.Param("id")}
	doc, err := queries.Ask[InvoiceApp.GetInvoiceQuery, domaininvoice.Document](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h InvoiceHandler) Checkout(c *gin.Context) {
	cmd := InvoiceApp.FinalizeCheckoutCommand{BookingID: c.Param("id")}
	result, err := commands.Dispatch[InvoiceApp.FinalizeCheckoutCommand, *InvoiceApp.FinalizeCheckoutResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ InvoiceHTTP = InvoiceHandler{}
