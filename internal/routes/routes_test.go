package routes

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yuni-community/community_backend/internal/config"
	"github.com/yuni-community/community_backend/internal/models"
	"github.com/yuni-community/community_backend/internal/repository"
	"github.com/yuni-community/community_backend/internal/repository/memory"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Storage.Type = "local"
	cfg.Storage.UploadDir = t.TempDir()

	return Setup(cfg, memory.New().Repositories())
}

// doForm multipartフォームでリクエストを送る
func doForm(t *testing.T, r *gin.Engine, method, path string, fields map[string]string, cookie *http.Cookie) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// doJSON JSONボディでリクエストを送る
func doJSON(t *testing.T, r *gin.Engine, method, path string, payload interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" && c.Value != "" {
			return c
		}
	}
	t.Fatal("セッションクッキーが設定されていません")
	return nil
}

func signupAndLogin(t *testing.T, r *gin.Engine, email, nickname string) *http.Cookie {
	w := doForm(t, r, http.MethodPost, "/auth/signup", map[string]string{
		"email":    email,
		"password": "password123",
		"nickname": nickname,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/auth/login", gin.H{
		"email":    email,
		"password": "password123",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	return sessionCookie(t, w)
}

func TestHealth(t *testing.T) {
	r := newTestServer(t)

	w := doJSON(t, r, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", parseEnvelope(t, w).Message)
}

func TestSignupLoginFlow(t *testing.T) {
	r := newTestServer(t)

	// 必須フィールド不足
	w := doForm(t, r, http.MethodPost, "/auth/signup", map[string]string{"email": "taro@example.com"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doForm(t, r, http.MethodPost, "/auth/signup", map[string]string{
		"email":    "taro@example.com",
		"password": "password123",
		"nickname": "taro",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		UserID uint `json:"user_id"`
	}
	require.NoError(t, json.Unmarshal(parseEnvelope(t, w).Data, &created))
	assert.NotZero(t, created.UserID)

	// 重複登録
	w = doForm(t, r, http.MethodPost, "/auth/signup", map[string]string{
		"email":    "taro@example.com",
		"password": "password123",
		"nickname": "taro2",
	}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// 使用状況チェック
	w = doJSON(t, r, http.MethodGet, "/users/check-email?email=taro@example.com", nil, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = doJSON(t, r, http.MethodGet, "/users/check-nickname?nickname=free", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// 誤ったパスワード
	w = doJSON(t, r, http.MethodPost, "/auth/login", gin.H{
		"email":    "taro@example.com",
		"password": "wrong",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// ログイン成功
	w = doJSON(t, r, http.MethodPost, "/auth/login", gin.H{
		"email":    "taro@example.com",
		"password": "password123",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(t, w)

	// 現在のユーザー
	w = doJSON(t, r, http.MethodGet, "/auth/current", nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)

	// 未ログインでは401
	w = doJSON(t, r, http.MethodGet, "/auth/current", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// ログアウト後は同じクッキーが無効になる
	w = doJSON(t, r, http.MethodPost, "/auth/logout", nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodGet, "/auth/current", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// セッションなしのログアウトは400
	w = doJSON(t, r, http.MethodPost, "/auth/logout", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostCommentLikeFlow(t *testing.T) {
	r := newTestServer(t)

	taro := signupAndLogin(t, r, "taro@example.com", "taro")
	jiro := signupAndLogin(t, r, "jiro@example.com", "jiro")

	// 未ログインでは投稿できない
	w := doForm(t, r, http.MethodPost, "/posts", map[string]string{
		"title":   "タイトル",
		"content": "本文",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doForm(t, r, http.MethodPost, "/posts", map[string]string{
		"title":   "タイトル",
		"content": "本文",
	}, taro)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		PostID uint `json:"post_id"`
	}
	require.NoError(t, json.Unmarshal(parseEnvelope(t, w).Data, &created))

	// 投稿詳細（本人の閲覧で views=1, is_author=true）
	w = doJSON(t, r, http.MethodGet, "/posts/1", nil, taro)
	require.Equal(t, http.StatusOK, w.Code)
	var post struct {
		PostID   uint   `json:"post_id"`
		Title    string `json:"title"`
		Views    int    `json:"views"`
		Author   string `json:"author"`
		IsAuthor bool   `json:"is_author"`
	}
	require.NoError(t, json.Unmarshal(parseEnvelope(t, w).Data, &post))
	assert.Equal(t, created.PostID, post.PostID)
	assert.Equal(t, 1, post.Views)
	assert.Equal(t, "taro", post.Author)
	assert.True(t, post.IsAuthor)

	// 他人の閲覧では is_author=false
	w = doJSON(t, r, http.MethodGet, "/posts/1", nil, jiro)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(parseEnvelope(t, w).Data, &post))
	assert.Equal(t, 2, post.Views)
	assert.False(t, post.IsAuthor)

	// 一覧
	w = doJSON(t, r, http.MethodGet, "/posts/page/1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Posts []json.RawMessage `json:"posts"`
		Total int64             `json:"total"`
		Pages int               `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(parseEnvelope(t, w).Data, &page))
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 1, page.Pages)
	assert.Len(t, page.Posts, 1)

	// 数値でないページは1ページ目に丸める
	w = doJSON(t, r, http.MethodGet, "/posts/page/abc", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// いいねのトグル
	w = doJSON(t, r, http.MethodPost, "/posts/1/like", nil, jiro)
	require.Equal(t, http.StatusOK, w.Code)
	var like struct {
		Likes int  `json:"likes"`
		Liked bool `json:"liked"`
	}
	require.NoError(t, json.Unmarshal(parseEnvelope(t, w).Data, &like))
	assert.True(t, like.Liked)
	assert.Equal(t, 1, like.Likes)

	w = doJSON(t, r, http.MethodPost, "/posts/1/like", nil, jiro)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(parseEnvelope(t, w).Data, &like))
	assert.False(t, like.Liked)
	assert.Equal(t, 0, like.Likes)

	// コメント
	w = doJSON(t, r, http.MethodPost, "/posts/1/comments", gin.H{"content": "最初のコメント"}, jiro)
	require.Equal(t, http.StatusCreated, w.Code)
	var comment struct {
		CommentID uint   `json:"comment_id"`
		Content   string `json:"content"`
		Author    string `json:"author"`
	}
	require.NoError(t, json.Unmarshal(parseEnvelope(t, w).Data, &comment))
	assert.Equal(t, "最初のコメント", comment.Content)
	assert.Equal(t, "jiro", comment.Author)

	// コメント一覧（未ログイン）
	w = doJSON(t, r, http.MethodGet, "/posts/1/comments", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Comments []struct {
			CommentID uint `json:"comment_id"`
			IsAuthor  bool `json:"is_author"`
		} `json:"comments"`
	}
	require.NoError(t, json.Unmarshal(parseEnvelope(t, w).Data, &list))
	require.Len(t, list.Comments, 1)
	assert.False(t, list.Comments[0].IsAuthor)

	// 他人のコメントは更新・削除できない
	w = doJSON(t, r, http.MethodPatch, "/posts/1/comments/1", gin.H{"content": "改ざん"}, taro)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(t, r, http.MethodDelete, "/posts/1/comments/1", nil, taro)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 本人は更新・削除できる
	w = doJSON(t, r, http.MethodPatch, "/posts/1/comments/1", gin.H{"content": "更新後"}, jiro)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodDelete, "/posts/1/comments/1", nil, jiro)
	assert.Equal(t, http.StatusOK, w.Code)

	// 他人の投稿は更新・削除できない
	w = doForm(t, r, http.MethodPatch, "/posts/1", map[string]string{
		"title":   "改ざん",
		"content": "本文",
	}, jiro)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = doJSON(t, r, http.MethodDelete, "/posts/1", nil, jiro)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteAccountFlow(t *testing.T) {
	r := newTestServer(t)

	taro := signupAndLogin(t, r, "taro@example.com", "taro")
	jiro := signupAndLogin(t, r, "jiro@example.com", "jiro")

	// taro が投稿、jiro がコメント・いいね
	w := doForm(t, r, http.MethodPost, "/posts", map[string]string{
		"title":   "taroの投稿",
		"content": "本文",
	}, taro)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doForm(t, r, http.MethodPost, "/posts", map[string]string{
		"title":   "jiroの投稿",
		"content": "本文",
	}, jiro)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/posts/2/comments", gin.H{"content": "taroのコメント"}, taro)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, r, http.MethodPost, "/posts/2/like", nil, taro)
	require.Equal(t, http.StatusOK, w.Code)

	// 未ログインでは退会できない
	w = doJSON(t, r, http.MethodDelete, "/users", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// taro が退会
	w = doJSON(t, r, http.MethodDelete, "/users", nil, taro)
	require.Equal(t, http.StatusOK, w.Code)

	// セッションは即時無効
	w = doJSON(t, r, http.MethodGet, "/auth/current", nil, taro)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// taro の投稿は消える
	w = doJSON(t, r, http.MethodGet, "/posts/1", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// jiro の投稿のカウンターは補正される
	w = doJSON(t, r, http.MethodGet, "/posts/2", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var post struct {
		Likes         int `json:"likes"`
		CommentsCount int `json:"comments_count"`
	}
	require.NoError(t, json.Unmarshal(parseEnvelope(t, w).Data, &post))
	assert.Equal(t, 0, post.Likes)
	assert.Equal(t, 0, post.CommentsCount)

	// メールアドレスは再び使用可能
	w = doJSON(t, r, http.MethodGet, "/users/check-email?email=taro@example.com", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

// failingPostRepo データベース障害を再現するスタブ
type failingPostRepo struct {
	repository.PostRepository
}

func (f *failingPostRepo) FindByID(id uint) (*models.Post, error) {
	return nil, errors.New("driver: bad connection")
}

func (f *failingPostRepo) ToggleLike(postID, userID uint) (bool, int, error) {
	return false, 0, errors.New("driver: bad connection")
}

func TestPersistenceFailureReturns500(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Storage.Type = "local"
	cfg.Storage.UploadDir = t.TempDir()

	repos := memory.New().Repositories()
	repos.Post = &failingPostRepo{repos.Post}
	r := Setup(cfg, repos)

	taro := signupAndLogin(t, r, "taro@example.com", "taro")

	// 永続化障害は詳細を隠した一般的な500になる
	w := doJSON(t, r, http.MethodGet, "/posts/1", nil, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "サーバーエラーが発生しました", parseEnvelope(t, w).Message)

	w = doJSON(t, r, http.MethodPost, "/posts/1/like", nil, taro)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "サーバーエラーが発生しました", parseEnvelope(t, w).Message)
}

func TestUpdateProfileAndPassword(t *testing.T) {
	r := newTestServer(t)

	taro := signupAndLogin(t, r, "taro@example.com", "taro")
	signupAndLogin(t, r, "jiro@example.com", "jiro")

	// 数値でないユーザーIDは400
	w := doForm(t, r, http.MethodPatch, "/users/abc", map[string]string{"nickname": "hack"}, taro)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 他人のプロフィールは更新できない
	w = doForm(t, r, http.MethodPatch, "/users/2", map[string]string{"nickname": "hack"}, taro)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 他人のニックネームには変更できない
	w = doForm(t, r, http.MethodPatch, "/users/1", map[string]string{"nickname": "jiro"}, taro)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doForm(t, r, http.MethodPatch, "/users/1", map[string]string{"nickname": "taro2"}, taro)
	require.Equal(t, http.StatusOK, w.Code)
	var profile struct {
		Nickname string `json:"nickname"`
	}
	require.NoError(t, json.Unmarshal(parseEnvelope(t, w).Data, &profile))
	assert.Equal(t, "taro2", profile.Nickname)

	// 同じパスワードへの変更は400
	w = doJSON(t, r, http.MethodPatch, "/users/password", gin.H{"new_password": "password123"}, taro)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPatch, "/users/password", gin.H{"new_password": "new-password456"}, taro)
	assert.Equal(t, http.StatusOK, w.Code)

	// 新しいパスワードでログインできる
	w = doJSON(t, r, http.MethodPost, "/auth/login", gin.H{
		"email":    "taro@example.com",
		"password": "new-password456",
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
