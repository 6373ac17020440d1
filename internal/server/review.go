package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	reviewdomain "github.com/smallbiznis/taskora/internal/review/domain"
)

func (s *Server) ListAssignmentReviews(c *gin.Context) {
	if _, ok := s.principal(c); !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	reviews, err := s.reviewSvc.ListByAssignment(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

func (s *Server) SubmitContractorReview(c *gin.Context) {
	principal, ok := s.principal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req reviewdomain.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	review, err := s.reviewSvc.SubmitContractorReview(c.Request.Context(), principal.UserID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (s *Server) SubmitClientReview(c *gin.Context) {
	principal, ok := s.principal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req reviewdomain.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	review, err := s.reviewSvc.SubmitClientReview(c.Request.Context(), principal.UserID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}
