package http

import (
	"strings"

	"github.com/gin-gonic/gin"

	"formdraft/internal/domain"
)

const principalKey = "principal"

// authRequired resolves the session credential to a user and stores it on
// the context. Handlers behind it read the owner uid only from principal().
func (h *Handler) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := h.guard.Resolve(c.Request.Context(), h.requestToken(c))
		if err != nil {
			h.writeError(c, err, "")
			return
		}
		c.Set(principalKey, user)
		c.Next()
	}
}

func (h *Handler) requestToken(c *gin.Context) string {
	if token, err := c.Cookie(h.tokens.CookieName()); err == nil && token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

func principal(c *gin.Context) *domain.User {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}
