package leave

import (
	"go-ems/internal/middleware"
	"go-ems/internal/rbac"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the leave endpoints. guards run first and must
// include the auth middleware; idempotency wraps submission only.
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	idempotency gin.HandlerFunc,
	guards ...gin.HandlerFunc,
) {
	leaves := r.Group("/leaves")
	leaves.Use(guards...)
	{
		leaves.GET("", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionRead), handler.ListAll)
		leaves.POST("", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionSubmit), idempotency, handler.Submit)
		leaves.PATCH("/:id/status", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionRead), handler.UpdateStatus)
		leaves.GET("/employee/:employeeId", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionRead), handler.GetByEmployee)
		leaves.GET("/employee/:employeeId/balance", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionRead), handler.Balance)
	}
}
