package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	cartdomain "github.com/smallbiznis/taskora/internal/cart/domain"
)

type AddInvoiceToCartRequest struct {
	InvoiceNumber string `json:"invoice_number" binding:"required"`
}

func (s *Server) GetCart(c *gin.Context) {
	sessionCartID := s.sessionCartID(c)
	if sessionCartID == "" {
		AbortWithError(c, cartdomain.ErrNotFound)
		return
	}

	var userID *snowflake.ID
	if principal, ok := s.principal(c); ok {
		userID = &principal.UserID
	}

	cart, err := s.cartSvc.GetOrCreate(c.Request.Context(), sessionCartID, userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (s *Server) AddInvoiceToCart(c *gin.Context) {
	sessionCartID := s.sessionCartID(c)
	if sessionCartID == "" {
		AbortWithError(c, cartdomain.ErrNotFound)
		return
	}

	var req AddInvoiceToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	cart, err := s.cartSvc.AddInvoice(c.Request.Context(), sessionCartID, req.InvoiceNumber)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}
