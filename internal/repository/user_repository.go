package repository

import (
	"errors"
	"fmt"

	"github.com/yuni-community/community_backend/internal/models"

	"gorm.io/gorm"
)

// UserRepository ユーザーに関するデータベース操作を行うインターフェース
type UserRepository interface {
	Create(user *models.User) error
	FindByID(id uint) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	FindByNickname(nickname string) (*models.User, error)
	Update(user *models.User) error
	DeleteCascade(id uint) error
}

// userRepository UserRepositoryの実装
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository UserRepositoryを作成
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create 新しいユーザーを作成
func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID IDでユーザーを検索
func (r *userRepository) FindByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("ユーザーが見つかりません: ID=%d", id)
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail メールアドレスでユーザーを検索
func (r *userRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("ユーザーが見つかりません: email=%s", email)
		}
		return nil, err
	}
	return &user, nil
}

// FindByNickname ニックネームでユーザーを検索
func (r *userRepository) FindByNickname(nickname string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("nickname = ?", nickname).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("ユーザーが見つかりません: nickname=%s", nickname)
		}
		return nil, err
	}
	return &user, nil
}

// Update ユーザー情報を更新
func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// DeleteCascade ユーザーと依存する行をまとめて削除
// 他人の投稿に残したコメント・いいねのカウンター補正を先に行い、
// 行の削除とセッション無効化まで単一トランザクションで実行する
func (r *userRepository) DeleteCascade(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("ユーザーが見つかりません: ID=%d", id)
			}
			return err
		}

		// 他人の投稿に付けたコメント分だけ comments_count を減算
		var comments []models.Comment
		if err := tx.Where("user_id = ?", id).Find(&comments).Error; err != nil {
			return err
		}
		commentCounts := make(map[uint]int)
		for _, c := range comments {
			commentCounts[c.PostID]++
		}
		for postID, n := range commentCounts {
			if err := tx.Model(&models.Post{}).
				Where("id = ? AND user_id <> ?", postID, id).
				Update("comments_count", gorm.Expr("comments_count - ?", n)).Error; err != nil {
				return err
			}
		}

		// 他人の投稿に付けたいいね分だけ likes を減算
		var likes []models.Like
		if err := tx.Where("user_id = ?", id).Find(&likes).Error; err != nil {
			return err
		}
		for _, l := range likes {
			if err := tx.Model(&models.Post{}).
				Where("id = ? AND user_id <> ?", l.PostID, id).
				Update("likes", gorm.Expr("likes - 1")).Error; err != nil {
				return err
			}
		}

		// 本人のコメント・いいねを削除
		if err := tx.Where("user_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}

		// 本人の投稿と、その投稿に属するコメント・いいねを削除
		var postIDs []uint
		if err := tx.Model(&models.Post{}).Where("user_id = ?", id).Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		if len(postIDs) > 0 {
			if err := tx.Where("post_id IN ?", postIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id IN ?", postIDs).Delete(&models.Like{}).Error; err != nil {
				return err
			}
			if err := tx.Where("user_id = ?", id).Delete(&models.Post{}).Error; err != nil {
				return err
			}
		}

		// ユーザー本体とセッションを削除
		if err := tx.Delete(&models.User{}, id).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", id).Delete(&models.Session{}).Error
	})
}
