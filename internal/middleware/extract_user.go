package middleware

import (
	"go-ems/internal/domain"
	"go-ems/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
)

// CurrentPrincipal returns the principal AuthMiddleware attached, if any.
func CurrentPrincipal(c *gin.Context) (domain.Principal, bool) {
	p, ok := contextutil.GetPrincipal(c.Request.Context())
	if !ok || p.IsZero() {
		return domain.Principal{}, false
	}
	return p, true
}
