package router

import (
	"github.com/gin-gonic/gin"

	mdw "shop-api/internal/transport/http/middleware"
	resp "shop-api/internal/transport/http/response"
)

func NewAPIEngine(o Options) *gin.Engine {
	r := newEngine(o)
	r.GET("/", func(c *gin.Context) {
		resp.JSON(c, gin.H{"message": "Welcome to the E-Commerce API"})
	})

	// 前缀
	api := r.Group("/api/v1")

	// 鉴权分组：除注册/登录外都挂这里，才能拿到 userId
	authed := api.Group("")
	authed.Use(mdw.AuthJWT(o.JWT, ""))

	NewRegistry(Modules(o.Services)...).MountAllAPI(api, authed)
	return r
}
