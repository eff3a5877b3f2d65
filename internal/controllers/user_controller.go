package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/yuni-community/community_backend/internal/models"
	"github.com/yuni-community/community_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// UserController ユーザーに関するコントローラー
type UserController struct {
	userService services.UserService
	authService services.AuthService
}

// NewUserController UserControllerを作成
func NewUserController(userService services.UserService, authService services.AuthService) *UserController {
	return &UserController{
		userService: userService,
		authService: authService,
	}
}

// PasswordChangeRequest パスワード変更リクエスト
type PasswordChangeRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// CheckEmail メールアドレスが使用可能か確認
func (c *UserController) CheckEmail(ctx *gin.Context) {
	email := strings.TrimSpace(ctx.Query("email"))
	if email == "" {
		respond(ctx, http.StatusBadRequest, "メールアドレスは必須です", nil)
		return
	}

	available, err := c.userService.IsEmailAvailable(email)
	if err != nil {
		respond(ctx, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if !available {
		respond(ctx, http.StatusConflict, "このメールアドレスは既に使用されています", nil)
		return
	}

	respond(ctx, http.StatusOK, "使用可能なメールアドレスです", nil)
}

// CheckNickname ニックネームが使用可能か確認
func (c *UserController) CheckNickname(ctx *gin.Context) {
	nickname := strings.TrimSpace(ctx.Query("nickname"))
	if nickname == "" {
		respond(ctx, http.StatusBadRequest, "ニックネームは必須です", nil)
		return
	}

	available, err := c.userService.IsNicknameAvailable(nickname)
	if err != nil {
		respond(ctx, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if !available {
		respond(ctx, http.StatusConflict, "このニックネームは既に使用されています", nil)
		return
	}

	respond(ctx, http.StatusOK, "使用可能なニックネームです", nil)
}

// UpdateProfile プロフィールを更新（multipart、画像は任意）
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	user, exists := ctx.Get("user")
	if !exists {
		respond(ctx, http.StatusUnauthorized, "ログインが必要です", nil)
		return
	}
	u := user.(*models.User)

	targetID, err := strconv.ParseUint(ctx.Param("user_id"), 10, 32)
	if err != nil {
		respond(ctx, http.StatusBadRequest, "無効なユーザーIDです", nil)
		return
	}

	// 自分のプロフィールのみ更新可能
	if uint(targetID) != u.ID {
		respond(ctx, http.StatusForbidden, "このプロフィールを更新する権限がありません", nil)
		return
	}

	nickname := strings.TrimSpace(ctx.PostForm("nickname"))

	file, header, err := ctx.Request.FormFile("profile_image")
	if err != nil {
		file, header = nil, nil
	} else {
		defer file.Close()
	}

	updated, err := c.userService.UpdateProfile(u.ID, nickname, file, header)
	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "プロフィールを更新しました", updated)
}

// UpdatePassword パスワードを変更
func (c *UserController) UpdatePassword(ctx *gin.Context) {
	user, exists := ctx.Get("user")
	if !exists {
		respond(ctx, http.StatusUnauthorized, "ログインが必要です", nil)
		return
	}
	u := user.(*models.User)

	var req PasswordChangeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respond(ctx, http.StatusBadRequest, "新しいパスワードは6文字以上で入力してください", nil)
		return
	}

	if err := c.authService.ChangePassword(u.ID, req.NewPassword); err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "パスワードを変更しました", nil)
}

// DeleteAccount 会員退会（カスケード削除）
func (c *UserController) DeleteAccount(ctx *gin.Context) {
	user, exists := ctx.Get("user")
	if !exists {
		respond(ctx, http.StatusUnauthorized, "ログインが必要です", nil)
		return
	}
	u := user.(*models.User)

	if err := c.userService.DeleteAccount(u.ID); err != nil {
		if strings.Contains(err.Error(), "見つかりません") {
			respond(ctx, http.StatusNotFound, err.Error(), nil)
			return
		}
		respond(ctx, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	ctx.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
	respond(ctx, http.StatusOK, "退会が完了しました", nil)
}
