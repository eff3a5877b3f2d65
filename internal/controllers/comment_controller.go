package controllers

import (
	"net/http"
	"strconv"

	"github.com/yuni-community/community_backend/internal/models"
	"github.com/yuni-community/community_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// CommentController コメントに関するコントローラー
type CommentController struct {
	commentService services.CommentService
}

// NewCommentController CommentControllerを作成
func NewCommentController(commentService services.CommentService) *CommentController {
	return &CommentController{
		commentService: commentService,
	}
}

// CommentRequest コメント作成・更新リクエスト
type CommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// List 投稿のコメント一覧を取得
func (c *CommentController) List(ctx *gin.Context) {
	postID, err := strconv.ParseUint(ctx.Param("post_id"), 10, 32)
	if err != nil {
		respond(ctx, http.StatusBadRequest, "無効な投稿IDです", nil)
		return
	}

	comments, err := c.commentService.ListByPost(uint(postID), viewerID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "コメント一覧", gin.H{"comments": comments})
}

// Create コメントを作成
func (c *CommentController) Create(ctx *gin.Context) {
	user, exists := ctx.Get("user")
	if !exists {
		respond(ctx, http.StatusUnauthorized, "ログインが必要です", nil)
		return
	}
	u := user.(*models.User)

	postID, err := strconv.ParseUint(ctx.Param("post_id"), 10, 32)
	if err != nil {
		respond(ctx, http.StatusBadRequest, "無効な投稿IDです", nil)
		return
	}

	var req CommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respond(ctx, http.StatusBadRequest, "コメント内容は必須です", nil)
		return
	}

	comment, err := c.commentService.Create(uint(postID), u.ID, req.Content)
	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, "コメントを作成しました", comment)
}

// Update コメントを更新
func (c *CommentController) Update(ctx *gin.Context) {
	user, exists := ctx.Get("user")
	if !exists {
		respond(ctx, http.StatusUnauthorized, "ログインが必要です", nil)
		return
	}
	u := user.(*models.User)

	postID, err := strconv.ParseUint(ctx.Param("post_id"), 10, 32)
	if err != nil {
		respond(ctx, http.StatusBadRequest, "無効な投稿IDです", nil)
		return
	}
	commentID, err := strconv.ParseUint(ctx.Param("comment_id"), 10, 32)
	if err != nil {
		respond(ctx, http.StatusBadRequest, "無効なコメントIDです", nil)
		return
	}

	var req CommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respond(ctx, http.StatusBadRequest, "コメント内容は必須です", nil)
		return
	}

	comment, err := c.commentService.Update(uint(commentID), uint(postID), u.ID, req.Content)
	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "コメントを更新しました", comment)
}

// Delete コメントを削除
func (c *CommentController) Delete(ctx *gin.Context) {
	user, exists := ctx.Get("user")
	if !exists {
		respond(ctx, http.StatusUnauthorized, "ログインが必要です", nil)
		return
	}
	u := user.(*models.User)

	postID, err := strconv.ParseUint(ctx.Param("post_id"), 10, 32)
	if err != nil {
		respond(ctx, http.StatusBadRequest, "無効な投稿IDです", nil)
		return
	}
	commentID, err := strconv.ParseUint(ctx.Param("comment_id"), 10, 32)
	if err != nil {
		respond(ctx, http.StatusBadRequest, "無効なコメントIDです", nil)
		return
	}

	if err := c.commentService.Delete(uint(commentID), uint(postID), u.ID); err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "コメントを削除しました", nil)
}
