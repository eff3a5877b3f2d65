package routes

import (
	"log"

	"github.com/yuni-community/community_backend/internal/config"
	"github.com/yuni-community/community_backend/internal/controllers"
	"github.com/yuni-community/community_backend/internal/middlewares"
	"github.com/yuni-community/community_backend/internal/repository"
	"github.com/yuni-community/community_backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter DB接続からルーターを設定
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	return Setup(cfg, repository.New(db))
}

// Setup リポジトリからルーターを組み立てる
// テストではインメモリ実装を渡す
func Setup(cfg *config.Config, repos *repository.Repositories) *gin.Engine {
	r := gin.Default()

	// ミドルウェアを設定
	r.Use(middlewares.ErrorMiddleware())
	r.Use(middlewares.CORSMiddleware())

	// ストレージサービスを作成
	storage, err := services.NewStorageService(cfg)
	if err != nil {
		log.Fatalf("ストレージサービスの初期化に失敗しました: %v", err)
	}

	// サービスを作成
	authService := services.NewAuthService(repos.User, repos.Session, cfg)
	userService := services.NewUserService(repos.User, repos.Post, storage)
	postService := services.NewPostService(repos.Post, storage)
	commentService := services.NewCommentService(repos.Comment, repos.Post)

	// コントローラーを作成
	authController := controllers.NewAuthController(authService, storage, cfg)
	userController := controllers.NewUserController(userService, authService)
	postController := controllers.NewPostController(postService)
	commentController := controllers.NewCommentController(commentService)
	healthController := controllers.NewHealthController()

	// 認証ミドルウェア
	authMiddleware := middlewares.AuthMiddleware(authService)
	optionalAuthMiddleware := middlewares.OptionalAuthMiddleware(authService)

	// ヘルスチェックルート（認証不要）
	r.GET("/health", healthController.Check)

	// 認証ルート
	auth := r.Group("/auth")
	{
		auth.POST("/signup", authController.Signup)
		auth.POST("/login", authController.Login)
		auth.POST("/logout", authController.Logout)
		auth.GET("/current", authMiddleware, authController.GetCurrent)
	}

	// ユーザールート
	users := r.Group("/users")
	{
		users.GET("/check-email", userController.CheckEmail)
		users.GET("/check-nickname", userController.CheckNickname)
		users.PATCH("/password", authMiddleware, userController.UpdatePassword)
		users.PATCH("/:user_id", authMiddleware, userController.UpdateProfile)
		users.DELETE("", authMiddleware, userController.DeleteAccount)
	}

	// 投稿ルート
	posts := r.Group("/posts")
	{
		posts.GET("/page/:page", postController.ListPage)
		posts.GET("/:post_id", optionalAuthMiddleware, postController.Get)
		posts.POST("", authMiddleware, postController.Create)
		posts.PATCH("/:post_id", authMiddleware, postController.Update)
		posts.DELETE("/:post_id", authMiddleware, postController.Delete)

		// いいね
		posts.POST("/:post_id/like", authMiddleware, postController.ToggleLike)

		// コメント
		posts.GET("/:post_id/comments", optionalAuthMiddleware, commentController.List)
		posts.POST("/:post_id/comments", authMiddleware, commentController.Create)
		posts.PATCH("/:post_id/comments/:comment_id", authMiddleware, commentController.Update)
		posts.DELETE("/:post_id/comments/:comment_id", authMiddleware, commentController.Delete)
	}

	// ローカルストレージの場合は /uploads を静的配信
	if cfg.Storage.Type == "local" || cfg.Storage.Type == "" {
		r.Static("/uploads", cfg.Storage.UploadDir)
	}

	return r
}
