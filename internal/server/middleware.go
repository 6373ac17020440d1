package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	authdomain "github.com/smallbiznis/taskora/internal/auth/domain"
	userdomain "github.com/smallbiznis/taskora/internal/user/domain"
)

const (
	sessionCookieName = "taskora_session"
	cartCookieName    = "taskora_cart"

	contextPrincipalKey = "principal"

	cookieMaxAge = 60 * 60 * 24 * 30
)

// AuthRequired resolves the session cookie into a principal and attaches it
// to the request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(sessionCookieName)
		if err != nil || strings.TrimSpace(sid) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		principal, err := s.authSvc.Resolve(c.Request.Context(), sid)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextPrincipalKey, principal)
		c.Next()
	}
}

// RequireRole gates a route to one marketplace role. Runs after AuthRequired.
func (s *Server) RequireRole(role userdomain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := s.principal(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if principal.Role != role {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

// CartContext guarantees every API caller carries a session cart cookie.
func (s *Server) CartContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := c.Cookie(cartCookieName); err != nil {
			c.SetCookie(cartCookieName, uuid.NewString(), cookieMaxAge, "/", "", s.cfg.AuthCookieSecure, true)
		}
		c.Next()
	}
}

func (s *Server) principal(c *gin.Context) (*authdomain.Principal, bool) {
	value, ok := c.Get(contextPrincipalKey)
	if !ok {
		return nil, false
	}
	principal, ok := value.(*authdomain.Principal)
	return principal, ok
}

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}

// sessionCartID reads the cart cookie, falling back to the value set on this
// request when the cookie was just issued.
func (s *Server) sessionCartID(c *gin.Context) string {
	if value, err := c.Cookie(cartCookieName); err == nil && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	for _, raw := range c.Writer.Header().Values("Set-Cookie") {
		if strings.HasPrefix(raw, cartCookieName+"=") {
			value := strings.TrimPrefix(raw, cartCookieName+"=")
			if idx := strings.Index(value, ";"); idx >= 0 {
				value = value[:idx]
			}
			return value
		}
	}
	return ""
}
