package services

import (
	"errors"
	"log"
	"mime/multipart"
	"strings"

	"github.com/yuni-community/community_backend/internal/models"
	"github.com/yuni-community/community_backend/internal/repository"
)

// PostPageLimit 投稿一覧の1ページあたりの件数
const PostPageLimit = 10

// PostService 投稿に関するサービスインターフェース
type PostService interface {
	Create(userID uint, title, content string, image multipart.File, imageHeader *multipart.FileHeader) (*models.Post, error)
	GetByID(id uint, viewerID *uint) (*models.Post, error)
	ListPage(page int) ([]models.Post, int64, int, error)
	Update(id, userID uint, title, content string, image multipart.File, imageHeader *multipart.FileHeader) (*models.Post, error)
	Delete(id, userID uint) error
	ToggleLike(postID, userID uint) (bool, int, error)
}

// postService PostServiceの実装
type postService struct {
	postRepo repository.PostRepository
	storage  StorageService
}

// NewPostService PostServiceを作成
func NewPostService(postRepo repository.PostRepository, storage StorageService) PostService {
	return &postService{
		postRepo: postRepo,
		storage:  storage,
	}
}

// Create 新しい投稿を作成
func (s *postService) Create(userID uint, title, content string, image multipart.File, imageHeader *multipart.FileHeader) (*models.Post, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, errors.New("タイトルと本文は必須です")
	}

	var imageURL string
	if image != nil && imageHeader != nil {
		url, err := s.storage.Save(image, imageHeader)
		if err != nil {
			return nil, err
		}
		imageURL = url
	}

	post := &models.Post{
		UserID:   userID,
		Title:    title,
		Content:  content,
		ImageURL: imageURL,
	}

	if err := s.postRepo.Create(post); err != nil {
		return nil, err
	}

	return s.postRepo.FindByID(post.ID)
}

// GetByID 投稿の詳細を取得し、閲覧数を加算
func (s *postService) GetByID(id uint, viewerID *uint) (*models.Post, error) {
	post, err := s.postRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.postRepo.IncrementViews(id); err != nil {
		log.Printf("閲覧数の更新に失敗しました: post_id=%d: %v", id, err)
	} else {
		post.Views++
	}

	if viewerID != nil {
		post.IsAuthor = *viewerID == post.UserID
	}

	return post, nil
}

// ListPage 投稿一覧を取得（1ページ10件・新着順）
func (s *postService) ListPage(page int) ([]models.Post, int64, int, error) {
	if page < 1 {
		page = 1
	}

	posts, total, err := s.postRepo.FindPage(page, PostPageLimit)
	if err != nil {
		return nil, 0, 0, err
	}

	pages := int(total) / PostPageLimit
	if int(total)%PostPageLimit > 0 {
		pages++
	}

	return posts, total, pages, nil
}

// Update 投稿を更新
func (s *postService) Update(id, userID uint, title, content string, image multipart.File, imageHeader *multipart.FileHeader) (*models.Post, error) {
	post, err := s.postRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	// 権限チェック
	if post.UserID != userID {
		return nil, errors.New("この投稿を更新する権限がありません")
	}

	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, errors.New("タイトルと本文は必須です")
	}

	post.Title = title
	post.Content = content

	// 画像が差し替えられた場合のみ更新
	if image != nil && imageHeader != nil {
		imageURL, err := s.storage.Save(image, imageHeader)
		if err != nil {
			return nil, err
		}
		if post.ImageURL != "" {
			if err := s.storage.Delete(post.ImageURL); err != nil {
				log.Printf("投稿画像の削除に失敗しました: post_id=%d: %v", id, err)
			}
		}
		post.ImageURL = imageURL
	}

	if err := s.postRepo.Update(post); err != nil {
		return nil, err
	}

	return s.postRepo.FindByID(id)
}

// Delete 投稿を削除
func (s *postService) Delete(id, userID uint) error {
	post, err := s.postRepo.FindByID(id)
	if err != nil {
		return err
	}

	// 権限チェック
	if post.UserID != userID {
		return errors.New("この投稿を削除する権限がありません")
	}

	// 画像ブロブを削除（ベストエフォート）
	if post.ImageURL != "" {
		if err := s.storage.Delete(post.ImageURL); err != nil {
			log.Printf("投稿画像の削除に失敗しました: post_id=%d: %v", id, err)
		}
	}

	return s.postRepo.Delete(id)
}

// ToggleLike いいねをトグルし、いいね数と状態を返す
func (s *postService) ToggleLike(postID, userID uint) (bool, int, error) {
	return s.postRepo.ToggleLike(postID, userID)
}
