package repository

import (
	"gorm.io/gorm"
)

// Repositories 永続化バックエンドのリポジトリ一式
// gorm実装とテスト用のインメモリ実装を差し替えられるようにまとめる
type Repositories struct {
	User    UserRepository
	Post    PostRepository
	Comment CommentRepository
	Session SessionRepository
}

// New gormベースのリポジトリ一式を作成
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		User:    NewUserRepository(db),
		Post:    NewPostRepository(db),
		Comment: NewCommentRepository(db),
		Session: NewSessionRepository(db),
	}
}
