package repository

import (
	"errors"
	"fmt"

	"github.com/yuni-community/community_backend/internal/models"

	"gorm.io/gorm"
)

// SessionRepository セッションに関するデータベース操作を行うインターフェース
type SessionRepository interface {
	Create(session *models.Session) error
	FindByID(id string) (*models.Session, error)
	Delete(id string) error
	DeleteByUser(userID uint) error
}

// sessionRepository SessionRepositoryの実装
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository SessionRepositoryを作成
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// Create 新しいセッションを作成
func (r *sessionRepository) Create(session *models.Session) error {
	return r.db.Create(session).Error
}

// FindByID IDでセッションを検索
func (r *sessionRepository) FindByID(id string) (*models.Session, error) {
	var session models.Session
	if err := r.db.Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("セッションが見つかりません")
		}
		return nil, err
	}
	return &session, nil
}

// Delete セッションを削除
func (r *sessionRepository) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&models.Session{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("セッションが見つかりません")
	}
	return nil
}

// DeleteByUser ユーザーのセッションをすべて削除
func (r *sessionRepository) DeleteByUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.Session{}).Error
}
