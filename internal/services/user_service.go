package services

import (
	"errors"
	"log"
	"mime/multipart"
	"strings"

	"github.com/yuni-community/community_backend/internal/models"
	"github.com/yuni-community/community_backend/internal/repository"
)

// UserService ユーザーに関するサービスインターフェース
type UserService interface {
	GetByID(id uint) (*models.User, error)
	UpdateProfile(userID uint, nickname string, image multipart.File, imageHeader *multipart.FileHeader) (*models.User, error)
	IsEmailAvailable(email string) (bool, error)
	IsNicknameAvailable(nickname string) (bool, error)
	DeleteAccount(userID uint) error
}

// userService UserServiceの実装
type userService struct {
	userRepo repository.UserRepository
	postRepo repository.PostRepository
	storage  StorageService
}

// NewUserService UserServiceを作成
func NewUserService(userRepo repository.UserRepository, postRepo repository.PostRepository, storage StorageService) UserService {
	return &userService{
		userRepo: userRepo,
		postRepo: postRepo,
		storage:  storage,
	}
}

// GetByID IDでユーザーを取得
func (s *userService) GetByID(id uint) (*models.User, error) {
	return s.userRepo.FindByID(id)
}

// UpdateProfile プロフィールを更新
// 画像が差し替えられた場合、古い画像の削除はベストエフォート
func (s *userService) UpdateProfile(userID uint, nickname string, image multipart.File, imageHeader *multipart.FileHeader) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, errors.New("ユーザーが見つかりません")
	}

	if strings.TrimSpace(nickname) == "" {
		return nil, errors.New("ニックネームは必須です")
	}

	// ニックネーム変更時は重複を確認
	if nickname != user.Nickname {
		if existing, err := s.userRepo.FindByNickname(nickname); err == nil && existing != nil {
			return nil, errors.New("このニックネームは既に使用されています")
		}
		user.Nickname = nickname
	}

	if image != nil && imageHeader != nil {
		imageURL, err := s.storage.Save(image, imageHeader)
		if err != nil {
			return nil, err
		}

		// 古い画像を削除（プレースホルダーは対象外）
		if user.ProfileImage != "" && user.ProfileImage != models.DefaultProfileImage {
			if err := s.storage.Delete(user.ProfileImage); err != nil {
				log.Printf("プロフィール画像の削除に失敗しました: user_id=%d: %v", userID, err)
			}
		}
		user.ProfileImage = imageURL
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	return user, nil
}

// IsEmailAvailable メールアドレスが未使用か確認
func (s *userService) IsEmailAvailable(email string) (bool, error) {
	if existing, err := s.userRepo.FindByEmail(email); err == nil && existing != nil {
		return false, nil
	}
	return true, nil
}

// IsNicknameAvailable ニックネームが未使用か確認
func (s *userService) IsNicknameAvailable(nickname string) (bool, error) {
	if existing, err := s.userRepo.FindByNickname(nickname); err == nil && existing != nil {
		return false, nil
	}
	return true, nil
}

// DeleteAccount 会員退会のカスケード
// 1. ユーザーを確認
// 2. プロフィール画像・投稿画像のブロブを削除（失敗してもログのみ）
// 3. 行の削除（コメント・いいね・投稿・ユーザー・セッション）を
//    単一トランザクションで実行
func (s *userService) DeleteAccount(userID uint) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return errors.New("ユーザーが見つかりません")
	}

	// プロフィール画像を削除（ベストエフォート）
	if user.ProfileImage != "" && user.ProfileImage != models.DefaultProfileImage {
		if err := s.storage.Delete(user.ProfileImage); err != nil {
			log.Printf("プロフィール画像の削除に失敗しました: user_id=%d: %v", userID, err)
		}
	}

	// 投稿画像を削除（ベストエフォート）
	// 行を消す前にURLが必要なので、必ず先に行う
	posts, err := s.postRepo.ListByUser(userID)
	if err != nil {
		return err
	}
	for _, post := range posts {
		if post.ImageURL == "" {
			continue
		}
		if err := s.storage.Delete(post.ImageURL); err != nil {
			log.Printf("投稿画像の削除に失敗しました: post_id=%d: %v", post.ID, err)
		}
	}

	return s.userRepo.DeleteCascade(userID)
}
