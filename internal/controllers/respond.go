package controllers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Response 共通レスポンス形式
type Response struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// respond 共通形式でレスポンスを返す
func respond(ctx *gin.Context, status int, message string, data interface{}) {
	ctx.JSON(status, Response{
		Message: message,
		Data:    data,
	})
}

// validationMarkers 入力起因のエラーメッセージに含まれる語
var validationMarkers = []string{
	"必須です",
	"正しくありません",
	"同じです",
	"許可されていません",
	"大きすぎます",
	"無効な",
}

// respondError エラーメッセージからステータスコードを決めて返す
// 既知のメッセージに当てはまらないものは永続化などの内部障害として
// 詳細をログに残し、一般的な500を返す
func respondError(ctx *gin.Context, err error) {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "見つかりません"):
		respond(ctx, http.StatusNotFound, msg, nil)
	case strings.Contains(msg, "権限がありません"):
		respond(ctx, http.StatusForbidden, msg, nil)
	case strings.Contains(msg, "既に使用されています"):
		respond(ctx, http.StatusConflict, msg, nil)
	case isValidationError(msg):
		respond(ctx, http.StatusBadRequest, msg, nil)
	default:
		log.Printf("サーバーエラー: %s %s: %v", ctx.Request.Method, ctx.Request.URL.Path, err)
		respond(ctx, http.StatusInternalServerError, "サーバーエラーが発生しました", nil)
	}
}

func isValidationError(msg string) bool {
	for _, marker := range validationMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
