package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/yuni-community/community_backend/internal/models"
	"github.com/yuni-community/community_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// PostController 投稿に関するコントローラー
type PostController struct {
	postService services.PostService
}

// NewPostController PostControllerを作成
func NewPostController(postService services.PostService) *PostController {
	return &PostController{
		postService: postService,
	}
}

// viewerID 任意認証のビューアーIDを取得
func viewerID(ctx *gin.Context) *uint {
	if user, exists := ctx.Get("user"); exists {
		id := user.(*models.User).ID
		return &id
	}
	return nil
}

// ListPage 投稿一覧をページ指定で取得
func (c *PostController) ListPage(ctx *gin.Context) {
	page, err := strconv.Atoi(ctx.Param("page"))
	if err != nil {
		page = 1
	}

	posts, total, pages, err := c.postService.ListPage(page)
	if err != nil {
		respond(ctx, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	respond(ctx, http.StatusOK, "投稿一覧", gin.H{
		"posts": posts,
		"total": total,
		"pages": pages,
	})
}

// Get 投稿の詳細を取得
func (c *PostController) Get(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("post_id"), 10, 32)
	if err != nil {
		respond(ctx, http.StatusBadRequest, "無効な投稿IDです", nil)
		return
	}

	post, err := c.postService.GetByID(uint(id), viewerID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "投稿詳細", post)
}

// Create 新しい投稿を作成（multipart、画像は任意）
func (c *PostController) Create(ctx *gin.Context) {
	user, exists := ctx.Get("user")
	if !exists {
		respond(ctx, http.StatusUnauthorized, "ログインが必要です", nil)
		return
	}
	u := user.(*models.User)

	title := strings.TrimSpace(ctx.PostForm("title"))
	content := strings.TrimSpace(ctx.PostForm("content"))

	file, header, err := ctx.Request.FormFile("image")
	if err != nil {
		file, header = nil, nil
	} else {
		defer file.Close()
	}

	post, err := c.postService.Create(u.ID, title, content, file, header)
	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, "投稿を作成しました", gin.H{"post_id": post.ID})
}

// Update 投稿を更新
func (c *PostController) Update(ctx *gin.Context) {
	user, exists := ctx.Get("user")
	if !exists {
		respond(ctx, http.StatusUnauthorized, "ログインが必要です", nil)
		return
	}
	u := user.(*models.User)

	id, err := strconv.ParseUint(ctx.Param("post_id"), 10, 32)
	if err != nil {
		respond(ctx, http.StatusBadRequest, "無効な投稿IDです", nil)
		return
	}

	title := strings.TrimSpace(ctx.PostForm("title"))
	content := strings.TrimSpace(ctx.PostForm("content"))

	file, header, err := ctx.Request.FormFile("image")
	if err != nil {
		file, header = nil, nil
	} else {
		defer file.Close()
	}

	post, err := c.postService.Update(uint(id), u.ID, title, content, file, header)
	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "投稿を更新しました", post)
}

// Delete 投稿を削除
func (c *PostController) Delete(ctx *gin.Context) {
	user, exists := ctx.Get("user")
	if !exists {
		respond(ctx, http.StatusUnauthorized, "ログインが必要です", nil)
		return
	}
	u := user.(*models.User)

	id, err := strconv.ParseUint(ctx.Param("post_id"), 10, 32)
	if err != nil {
		respond(ctx, http.StatusBadRequest, "無効な投稿IDです", nil)
		return
	}

	if err := c.postService.Delete(uint(id), u.ID); err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "投稿を削除しました", nil)
}

// ToggleLike いいねをトグル
func (c *PostController) ToggleLike(ctx *gin.Context) {
	user, exists := ctx.Get("user")
	if !exists {
		respond(ctx, http.StatusUnauthorized, "ログインが必要です", nil)
		return
	}
	u := user.(*models.User)

	id, err := strconv.ParseUint(ctx.Param("post_id"), 10, 32)
	if err != nil {
		respond(ctx, http.StatusBadRequest, "無効な投稿IDです", nil)
		return
	}

	liked, likes, err := c.postService.ToggleLike(uint(id), u.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "いいねを更新しました", gin.H{
		"likes": likes,
		"liked": liked,
	})
}
