package services

import (
	"errors"
	"strings"

	"github.com/yuni-community/community_backend/internal/models"
	"github.com/yuni-community/community_backend/internal/repository"
)

// CommentService コメントに関するサービスインターフェース
type CommentService interface {
	Create(postID, userID uint, content string) (*models.Comment, error)
	ListByPost(postID uint, viewerID *uint) ([]models.Comment, error)
	Update(commentID, postID, userID uint, content string) (*models.Comment, error)
	Delete(commentID, postID, userID uint) error
}

// commentService CommentServiceの実装
type commentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

// NewCommentService CommentServiceを作成
func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// Create 新しいコメントを作成
func (s *commentService) Create(postID, userID uint, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errors.New("コメント内容は必須です")
	}

	// 投稿が存在するか確認
	if _, err := s.postRepo.FindByID(postID); err != nil {
		return nil, errors.New("投稿が見つかりません")
	}

	comment := &models.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: content,
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}

	return s.commentRepo.FindByID(comment.ID)
}

// ListByPost 投稿のコメント一覧を取得
func (s *commentService) ListByPost(postID uint, viewerID *uint) ([]models.Comment, error) {
	if _, err := s.postRepo.FindByID(postID); err != nil {
		return nil, errors.New("投稿が見つかりません")
	}

	comments, err := s.commentRepo.ListByPost(postID)
	if err != nil {
		return nil, err
	}

	if viewerID != nil {
		for i := range comments {
			comments[i].IsAuthor = comments[i].UserID == *viewerID
		}
	}

	return comments, nil
}

// Update コメントを更新
// 所有権の検証はリポジトリの1ステップ更新に委ねる
func (s *commentService) Update(commentID, postID, userID uint, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errors.New("コメント内容は必須です")
	}
	return s.commentRepo.UpdateOwned(commentID, postID, userID, content)
}

// Delete コメントを削除
func (s *commentService) Delete(commentID, postID, userID uint) error {
	return s.commentRepo.DeleteOwned(commentID, postID, userID)
}
