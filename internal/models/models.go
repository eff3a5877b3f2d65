package models

import (
	"time"
)

// DefaultProfileImage プロフィール画像未設定時のプレースホルダー
const DefaultProfileImage = "/uploads/user-profile.jpg"

// User ユーザーモデル
type User struct {
	ID           uint      `json:"user_id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	Password     string    `json:"-" gorm:"not null"`
	Nickname     string    `json:"nickname" gorm:"uniqueIndex;not null"`
	ProfileImage string    `json:"profile_image" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// リレーション
	Posts    []Post    `json:"-"`
	Comments []Comment `json:"-"`
}

// Post 投稿モデル
// Likes・Views・CommentsCount は非正規化カウンターで、
// コメント・いいね行と常に一致させる必要がある
type Post struct {
	ID            uint      `json:"post_id" gorm:"primaryKey"`
	UserID        uint      `json:"user_id" gorm:"index;not null"`
	Title         string    `json:"title" gorm:"not null"`
	Content       string    `json:"content" gorm:"type:text;not null"`
	ImageURL      string    `json:"image_url"`
	Likes         int       `json:"likes" gorm:"default:0"`
	Views         int       `json:"views" gorm:"default:0"`
	CommentsCount int       `json:"comments_count" gorm:"default:0"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// リレーション
	User *User `json:"-" gorm:"foreignKey:UserID"`

	// 表示用 (JSONレスポンス用)
	Author       string `json:"author" gorm:"-"`
	ProfileImage string `json:"profile_image" gorm:"-"`
	IsAuthor     bool   `json:"is_author" gorm:"-"`
}

// Comment コメントモデル
type Comment struct {
	ID        uint      `json:"comment_id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"index;not null"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// リレーション
	User *User `json:"-" gorm:"foreignKey:UserID"`

	// 表示用 (JSONレスポンス用)
	Author       string `json:"author" gorm:"-"`
	ProfileImage string `json:"profile_image" gorm:"-"`
	IsAuthor     bool   `json:"is_author" gorm:"-"`
}

// Like いいねモデル（投稿とユーザーの複合キーのみ）
type Like struct {
	PostID    uint      `json:"post_id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
}

// Session サーバー側セッション
// ログアウト・退会時に行を消すことでトークンを即時無効化する
type Session struct {
	ID        string    `json:"-" gorm:"primaryKey;size:36"`
	UserID    uint      `json:"-" gorm:"index;not null"`
	ExpiresAt time.Time `json:"-"`
	CreatedAt time.Time `json:"-"`
}
