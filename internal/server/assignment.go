package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	assignmentdomain "github.com/smallbiznis/taskora/internal/assignment/domain"
)

type CreateAssignmentRequest struct {
	TaskID       string `json:"task_id" binding:"required"`
	ContractorID string `json:"contractor_id" binding:"required"`
}

type UpdateAssignmentStatusRequest struct {
	Status assignmentdomain.Status `json:"status" binding:"required"`
}

func (s *Server) CreateAssignment(c *gin.Context) {
	principal, ok := s.principal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	contractorID, err := parseID(req.ContractorID)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	assignment, err := s.assignmentSvc.Create(c.Request.Context(), req.TaskID, principal.UserID, contractorID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, assignment)
}

func (s *Server) ListAssignments(c *gin.Context) {
	principal, ok := s.principal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	assignments, err := s.assignmentSvc.ListMine(c.Request.Context(), principal.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}

func (s *Server) GetAssignment(c *gin.Context) {
	principal, ok := s.principal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	assignment, err := s.assignmentSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if assignment.ClientID != principal.UserID && assignment.ContractorID != principal.UserID {
		AbortWithError(c, ErrForbidden)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

func (s *Server) UpdateAssignmentStatus(c *gin.Context) {
	principal, ok := s.principal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req UpdateAssignmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	assignment, err := s.assignmentSvc.UpdateStatus(c.Request.Context(), c.Param("id"), principal.UserID, req.Status)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

func (s *Server) AcceptAssignment(c *gin.Context) {
	principal, ok := s.principal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	assignment, err := s.assignmentSvc.Accept(c.Request.Context(), c.Param("id"), principal.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}
