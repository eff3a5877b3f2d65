package repository

import (
	"errors"
	"fmt"

	"github.com/yuni-community/community_backend/internal/models"

	"gorm.io/gorm"
)

// CommentRepository コメントに関するデータベース操作を行うインターフェース
// UpdateOwned/DeleteOwned は (コメントID, 投稿ID, ユーザーID) の一致を
// 1ステップで要求し、所有権の検証を兼ねる
type CommentRepository interface {
	Create(comment *models.Comment) error
	FindByID(id uint) (*models.Comment, error)
	ListByPost(postID uint) ([]models.Comment, error)
	UpdateOwned(commentID, postID, userID uint, content string) (*models.Comment, error)
	DeleteOwned(commentID, postID, userID uint) error
}

// commentRepository CommentRepositoryの実装
type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository CommentRepositoryを作成
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func attachCommentAuthor(comment *models.Comment) {
	if comment.User != nil {
		comment.Author = comment.User.Nickname
		comment.ProfileImage = comment.User.ProfileImage
	}
}

// Create 新しいコメントを作成し、投稿の comments_count を加算
func (r *commentRepository) Create(comment *models.Comment) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", comment.PostID).
			Update("comments_count", gorm.Expr("comments_count + 1")).Error
	})
}

// FindByID IDでコメントを検索
func (r *commentRepository) FindByID(id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.Preload("User").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("コメントが見つかりません: ID=%d", id)
		}
		return nil, err
	}
	attachCommentAuthor(&comment)
	return &comment, nil
}

// ListByPost 投稿のコメント一覧を作成日時の昇順で取得
func (r *commentRepository) ListByPost(postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	if err := r.db.Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	for i := range comments {
		attachCommentAuthor(&comments[i])
	}
	return comments, nil
}

// UpdateOwned 本人のコメントのみ更新
// 影響行が0の場合は「存在しない」と「本人でない」を区別せず見つからない扱いにする
func (r *commentRepository) UpdateOwned(commentID, postID, userID uint, content string) (*models.Comment, error) {
	result := r.db.Model(&models.Comment{}).
		Where("id = ? AND post_id = ? AND user_id = ?", commentID, postID, userID).
		Update("content", content)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("コメントが見つかりません: ID=%d", commentID)
	}
	return r.FindByID(commentID)
}

// DeleteOwned 本人のコメントのみ削除し、投稿の comments_count を減算
func (r *commentRepository) DeleteOwned(commentID, postID, userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND post_id = ? AND user_id = ?", commentID, postID, userID).
			Delete(&models.Comment{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("コメントが見つかりません: ID=%d", commentID)
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			Update("comments_count", gorm.Expr("comments_count - 1")).Error
	})
}
