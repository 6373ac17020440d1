package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type ContactAboutTaskRequest struct {
	TaskID string `json:"task_id" binding:"required"`
}

type SendMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

func (s *Server) ContactAboutTask(c *gin.Context) {
	principal, ok := s.principal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req ContactAboutTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	conversation, err := s.messagingSvc.Contact(c.Request.Context(), req.TaskID, principal.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, conversation)
}

func (s *Server) ListConversations(c *gin.Context) {
	principal, ok := s.principal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	conversations, err := s.messagingSvc.ListMine(c.Request.Context(), principal.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

func (s *Server) ListMessages(c *gin.Context) {
	principal, ok := s.principal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	messages, err := s.messagingSvc.Messages(c.Request.Context(), c.Param("id"), principal.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (s *Server) SendMessage(c *gin.Context) {
	principal, ok := s.principal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	message, err := s.messagingSvc.Send(c.Request.Context(), c.Param("id"), principal.UserID, req.Body)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}
