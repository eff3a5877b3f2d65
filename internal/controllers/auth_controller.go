package controllers

import (
	"net/http"
	"strings"

	"github.com/yuni-community/community_backend/internal/config"
	"github.com/yuni-community/community_backend/internal/models"
	"github.com/yuni-community/community_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// SessionCookieName セッショントークンを保持するクッキー名
const SessionCookieName = "session"

// AuthController 認証に関するコントローラー
type AuthController struct {
	authService services.AuthService
	storage     services.StorageService
	config      *config.Config
}

// NewAuthController AuthControllerを作成
func NewAuthController(authService services.AuthService, storage services.StorageService, cfg *config.Config) *AuthController {
	return &AuthController{
		authService: authService,
		storage:     storage,
		config:      cfg,
	}
}

// LoginRequest ログインリクエスト
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Signup ユーザー登録（multipart、プロフィール画像は任意）
func (c *AuthController) Signup(ctx *gin.Context) {
	email := strings.TrimSpace(ctx.PostForm("email"))
	password := ctx.PostForm("password")
	nickname := strings.TrimSpace(ctx.PostForm("nickname"))

	if email == "" || password == "" || nickname == "" {
		respond(ctx, http.StatusBadRequest, "メールアドレス・パスワード・ニックネームは必須です", nil)
		return
	}

	var profileImage string
	if file, header, err := ctx.Request.FormFile("profile_image"); err == nil {
		defer file.Close()
		url, err := c.storage.Save(file, header)
		if err != nil {
			respondError(ctx, err)
			return
		}
		profileImage = url
	}

	user, err := c.authService.Register(email, password, nickname, profileImage)
	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, "ユーザー登録が完了しました", gin.H{"user_id": user.ID})
}

// Login ログインし、セッションクッキーを設定
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respond(ctx, http.StatusBadRequest, "メールアドレスとパスワードは必須です", nil)
		return
	}

	user, token, err := c.authService.Login(req.Email, req.Password)
	if err != nil {
		respond(ctx, http.StatusBadRequest, err.Error(), nil)
		return
	}

	maxAge := int(c.config.Auth.SessionExpiry.Seconds())
	ctx.SetCookie(SessionCookieName, token, maxAge, "/", "", false, true)

	respond(ctx, http.StatusOK, "ログインしました", gin.H{"user_id": user.ID})
}

// Logout セッションを破棄し、クッキーを消す
func (c *AuthController) Logout(ctx *gin.Context) {
	token := extractToken(ctx)
	if token == "" {
		respond(ctx, http.StatusBadRequest, "ログインしていません", nil)
		return
	}

	if err := c.authService.Logout(token); err != nil {
		respond(ctx, http.StatusBadRequest, err.Error(), nil)
		return
	}

	ctx.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
	respond(ctx, http.StatusOK, "ログアウトしました", nil)
}

// GetCurrent 現在のユーザー情報を取得
func (c *AuthController) GetCurrent(ctx *gin.Context) {
	user, exists := ctx.Get("user")
	if !exists {
		respond(ctx, http.StatusUnauthorized, "ログインが必要です", nil)
		return
	}

	respond(ctx, http.StatusOK, "現在のユーザー情報", user.(*models.User))
}

// extractToken クッキーまたはAuthorizationヘッダーからトークンを取り出す
func extractToken(ctx *gin.Context) string {
	if token, err := ctx.Cookie(SessionCookieName); err == nil && token != "" {
		return token
	}

	authHeader := ctx.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
