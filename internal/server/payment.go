package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

type CreatePaymentRequest struct {
	Method string `json:"method"`
}

type CapturePayPalRequest struct {
	OrderID string `json:"order_id" binding:"required"`
}

func (s *Server) CreatePayment(c *gin.Context) {
	principal, ok := s.principal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	payment, err := s.paymentSvc.CreateFromCart(c.Request.Context(), principal.UserID, s.sessionCartID(c), req.Method)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func (s *Server) GetPayment(c *gin.Context) {
	principal, ok := s.principal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	payment, err := s.paymentSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if payment.UserID != principal.UserID {
		AbortWithError(c, ErrForbidden)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (s *Server) CreatePayPalOrder(c *gin.Context) {
	principal, ok := s.principal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	if !s.ownsPayment(c, principal.UserID) {
		return
	}

	result, err := s.paymentSvc.CreatePayPalOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (s *Server) CapturePayPal(c *gin.Context) {
	principal, ok := s.principal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	if !s.ownsPayment(c, principal.UserID) {
		return
	}

	var req CapturePayPalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	payment, err := s.paymentSvc.ApprovePayPal(c.Request.Context(), c.Param("id"), req.OrderID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// ownsPayment aborts the request unless the path payment belongs to userID.
func (s *Server) ownsPayment(c *gin.Context, userID snowflake.ID) bool {
	payment, err := s.paymentSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return false
	}
	if payment.UserID != userID {
		AbortWithError(c, ErrForbidden)
		return false
	}
	return true
}
