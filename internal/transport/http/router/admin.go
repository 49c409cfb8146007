package router

import (
	"github.com/gin-gonic/gin"

	"shop-api/internal/domain"
	mdw "shop-api/internal/transport/http/middleware"
)

func NewAdminEngine(o Options) *gin.Engine {
	r := newEngine(o)

	// 管理端 v1（统一要求 admin 角色）
	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(o.JWT, domain.RoleAdmin))

	NewRegistry(Modules(o.Services)...).MountAllAdmin(admin)
	return r
}
