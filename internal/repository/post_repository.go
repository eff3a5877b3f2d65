package repository

import (
	"errors"
	"fmt"

	"github.com/yuni-community/community_backend/internal/models"

	"gorm.io/gorm"
)

// PostRepository 投稿に関するデータベース操作を行うインターフェース
type PostRepository interface {
	Create(post *models.Post) error
	FindByID(id uint) (*models.Post, error)
	FindPage(page, limit int) ([]models.Post, int64, error)
	Update(post *models.Post) error
	Delete(id uint) error
	IncrementViews(id uint) error
	ToggleLike(postID, userID uint) (bool, int, error)
	ListByUser(userID uint) ([]models.Post, error)
	GetLikesCount(postID uint) (int, error)
	HasLiked(postID, userID uint) (bool, error)
}

// postRepository PostRepositoryの実装
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository PostRepositoryを作成
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// attachAuthor 表示用の作成者情報を設定
func attachAuthor(post *models.Post) {
	if post.User != nil {
		post.Author = post.User.Nickname
		post.ProfileImage = post.User.ProfileImage
	}
}

// Create 新しい投稿を作成
func (r *postRepository) Create(post *models.Post) error {
	return r.db.Create(post).Error
}

// FindByID IDで投稿を検索
func (r *postRepository) FindByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.Preload("User").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("投稿が見つかりません: ID=%d", id)
		}
		return nil, err
	}
	attachAuthor(&post)
	return &post, nil
}

// FindPage 投稿一覧を新着順で取得（1ページ目から）
func (r *postRepository) FindPage(page, limit int) ([]models.Post, int64, error) {
	var posts []models.Post
	var total int64

	offset := (page - 1) * limit

	if err := r.db.Model(&models.Post{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.Preload("User").
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, err
	}

	for i := range posts {
		attachAuthor(&posts[i])
	}

	return posts, total, nil
}

// Update 投稿を更新
func (r *postRepository) Update(post *models.Post) error {
	return r.db.Save(post).Error
}

// Delete 投稿と、属するコメント・いいねをまとめて削除
func (r *postRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
}

// IncrementViews 閲覧数を増加
func (r *postRepository) IncrementViews(id uint) error {
	return r.db.Model(&models.Post{}).Where("id = ?", id).
		Update("views", gorm.Expr("views + 1")).Error
}

// ToggleLike いいねのトグル
// 行の有無の確認・挿入/削除・カウンター増減を単一トランザクションで行う
func (r *postRepository) ToggleLike(postID, userID uint) (bool, int, error) {
	var liked bool
	var likes int

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("投稿が見つかりません: ID=%d", postID)
			}
			return err
		}

		result := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected > 0 {
			// いいね済みだったので取り消し
			liked = false
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).
				Update("likes", gorm.Expr("likes - 1")).Error; err != nil {
				return err
			}
		} else {
			liked = true
			if err := tx.Create(&models.Like{PostID: postID, UserID: userID}).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).
				Update("likes", gorm.Expr("likes + 1")).Error; err != nil {
				return err
			}
		}

		var updated models.Post
		if err := tx.Select("likes").First(&updated, postID).Error; err != nil {
			return err
		}
		likes = updated.Likes
		return nil
	})

	return liked, likes, err
}

// ListByUser ユーザーの投稿をすべて取得
func (r *postRepository) ListByUser(userID uint) ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// GetLikesCount いいね行の実数を取得
func (r *postRepository) GetLikesCount(postID uint) (int, error) {
	var count int64
	if err := r.db.Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// HasLiked ユーザーがいいねしているか確認
func (r *postRepository) HasLiked(postID, userID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
