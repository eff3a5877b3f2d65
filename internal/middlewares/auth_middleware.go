package middlewares

import (
	"net/http"
	"strings"

	"github.com/yuni-community/community_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// sessionCookieName セッショントークンを保持するクッキー名
const sessionCookieName = "session"

// tokenFromRequest クッキーまたはAuthorizationヘッダーからトークンを取り出す
func tokenFromRequest(ctx *gin.Context) string {
	if token, err := ctx.Cookie(sessionCookieName); err == nil && token != "" {
		return token
	}

	authHeader := ctx.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// AuthMiddleware 認証必須のミドルウェア
// セッションが生きていなければ401を返す
func AuthMiddleware(authService services.AuthService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := tokenFromRequest(ctx)
		if token == "" {
			ctx.JSON(http.StatusUnauthorized, gin.H{
				"message": "ログインが必要です",
				"data":    nil,
			})
			ctx.Abort()
			return
		}

		user, err := authService.GetUserFromToken(token)
		if err != nil {
			ctx.JSON(http.StatusUnauthorized, gin.H{
				"message": "ログインが必要です",
				"data":    nil,
			})
			ctx.Abort()
			return
		}

		ctx.Set("user", user)
		ctx.Next()
	}
}

// OptionalAuthMiddleware 認証任意のミドルウェア
// セッションがあればユーザーをコンテキストに設定し、なければそのまま通す
func OptionalAuthMiddleware(authService services.AuthService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := tokenFromRequest(ctx)
		if token != "" {
			if user, err := authService.GetUserFromToken(token); err == nil {
				ctx.Set("user", user)
			}
		}
		ctx.Next()
	}
}
