package middleware

import (
	"github.com/gin-gonic/gin"

	"shop-api/internal/core/auth"
	"shop-api/internal/domain"
	"shop-api/internal/transport/http/ez"
)

const KeyClaims = "claims"

// AuthJWT 校验 Bearer token，写入 userId/role；requireRole 非空时还要求角色匹配
func AuthJWT(j *auth.JWTer, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := j.Authenticate(c.GetHeader("Authorization"))
		if err != nil {
			ez.Fail(c, err)
			return
		}
		if requireRole != "" && claims.Role != requireRole {
			ez.Fail(c, domain.Forbidden("forbidden"))
			return
		}
		c.Set(ez.KeyUserID, claims.UID)
		c.Set(ez.KeyRole, claims.Role)
		c.Set(KeyClaims, claims)
		c.Next()
	}
}
