package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/taskora/internal/invoice/domain"
)

func (s *Server) CreateInvoice(c *gin.Context) {
	principal, ok := s.principal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req invoicedomain.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	invoice, err := s.invoiceSvc.Create(c.Request.Context(), principal.UserID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func (s *Server) UpdateInvoice(c *gin.Context) {
	principal, ok := s.principal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req invoicedomain.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	existing, err := s.invoiceSvc.GetByNumber(c.Request.Context(), req.InvoiceNumber)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if existing == nil {
		AbortWithError(c, invoicedomain.ErrNotFound)
		return
	}
	if existing.ContractorID != principal.UserID {
		AbortWithError(c, invoicedomain.ErrNotParty)
		return
	}

	invoice, err := s.invoiceSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (s *Server) GetInvoice(c *gin.Context) {
	invoice, ok := s.invoiceForParty(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (s *Server) RenderInvoicePDF(c *gin.Context) {
	invoice, ok := s.invoiceForParty(c)
	if !ok {
		return
	}

	doc, err := s.invoiceSvc.RenderPDF(c.Request.Context(), invoice.InvoiceNumber)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", invoice.InvoiceNumber+".pdf"))
	c.DataFromReader(http.StatusOK, -1, "application/pdf", doc, nil)
}

// invoiceForParty loads the invoice from the path and enforces that the
// caller is its client or contractor. Aborts the request on failure.
func (s *Server) invoiceForParty(c *gin.Context) (*invoicedomain.Invoice, bool) {
	principal, ok := s.principal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return nil, false
	}

	invoice, err := s.invoiceSvc.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		AbortWithError(c, err)
		return nil, false
	}
	if invoice == nil {
		AbortWithError(c, invoicedomain.ErrNotFound)
		return nil, false
	}
	if invoice.ClientID != principal.UserID && invoice.ContractorID != principal.UserID {
		AbortWithError(c, invoicedomain.ErrNotParty)
		return nil, false
	}
	return invoice, true
}
