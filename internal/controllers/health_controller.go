package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthController ヘルスチェック用コントローラー
type HealthController struct{}

// NewHealthController HealthControllerを作成
func NewHealthController() *HealthController {
	return &HealthController{}
}

// Check サーバーの状態を返す
func (c *HealthController) Check(ctx *gin.Context) {
	respond(ctx, http.StatusOK, "ok", gin.H{
		"time": time.Now().Format(time.RFC3339),
	})
}
