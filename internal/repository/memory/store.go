// テスト用のインメモリバックエンド
// gorm実装と同じ振る舞い（カウンター維持・カスケード・エラーメッセージ）を
// map と RWMutex の上で再現する
package memory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/yuni-community/community_backend/internal/models"
	"github.com/yuni-community/community_backend/internal/repository"
)

type likeKey struct {
	postID uint
	userID uint
}

// Store 全エンティティを保持するインメモリストア
type Store struct {
	mu       sync.RWMutex
	users    map[uint]*models.User
	posts    map[uint]*models.Post
	comments map[uint]*models.Comment
	likes    map[likeKey]*models.Like
	sessions map[string]*models.Session

	nextUserID    uint
	nextPostID    uint
	nextCommentID uint
}

// New 空のインメモリストアを作成
func New() *Store {
	return &Store{
		users:    make(map[uint]*models.User),
		posts:    make(map[uint]*models.Post),
		comments: make(map[uint]*models.Comment),
		likes:    make(map[likeKey]*models.Like),
		sessions: make(map[string]*models.Session),
	}
}

// Repositories ストアを共有するリポジトリ一式を返す
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		User:    &userStore{s},
		Post:    &postStore{s},
		Comment: &commentStore{s},
		Session: &sessionStore{s},
	}
}

func (s *Store) attachAuthor(post *models.Post) {
	if user, ok := s.users[post.UserID]; ok {
		post.Author = user.Nickname
		post.ProfileImage = user.ProfileImage
	}
}

func (s *Store) attachCommentAuthor(comment *models.Comment) {
	if user, ok := s.users[comment.UserID]; ok {
		comment.Author = user.Nickname
		comment.ProfileImage = user.ProfileImage
	}
}

/* -------------------------- ユーザー -------------------------- */

type userStore struct {
	s *Store
}

func (r *userStore) Create(user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextUserID++
	user.ID = r.s.nextUserID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	stored := *user
	r.s.users[user.ID] = &stored
	return nil
}

func (r *userStore) FindByID(id uint) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, fmt.Errorf("ユーザーが見つかりません: ID=%d", id)
	}
	u := *user
	return &u, nil
}

func (r *userStore) FindByEmail(email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, user := range r.s.users {
		if user.Email == email {
			u := *user
			return &u, nil
		}
	}
	return nil, fmt.Errorf("ユーザーが見つかりません: email=%s", email)
}

func (r *userStore) FindByNickname(nickname string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, user := range r.s.users {
		if user.Nickname == nickname {
			u := *user
			return &u, nil
		}
	}
	return nil, fmt.Errorf("ユーザーが見つかりません: nickname=%s", nickname)
}

func (r *userStore) Update(user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; !ok {
		return fmt.Errorf("ユーザーが見つかりません: ID=%d", user.ID)
	}
	user.UpdatedAt = time.Now()
	stored := *user
	r.s.users[user.ID] = &stored
	return nil
}

func (r *userStore) DeleteCascade(id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return fmt.Errorf("ユーザーが見つかりません: ID=%d", id)
	}

	// 他人の投稿に付けたコメントのカウンター補正と本人コメントの削除
	for commentID, comment := range r.s.comments {
		if comment.UserID != id {
			continue
		}
		if post, ok := r.s.posts[comment.PostID]; ok && post.UserID != id {
			post.CommentsCount--
		}
		delete(r.s.comments, commentID)
	}

	// 他人の投稿に付けたいいねのカウンター補正と本人いいねの削除
	for key := range r.s.likes {
		if key.userID != id {
			continue
		}
		if post, ok := r.s.posts[key.postID]; ok && post.UserID != id {
			post.Likes--
		}
		delete(r.s.likes, key)
	}

	// 本人の投稿と、その投稿に属するコメント・いいねを削除
	for postID, post := range r.s.posts {
		if post.UserID != id {
			continue
		}
		for commentID, comment := range r.s.comments {
			if comment.PostID == postID {
				delete(r.s.comments, commentID)
			}
		}
		for key := range r.s.likes {
			if key.postID == postID {
				delete(r.s.likes, key)
			}
		}
		delete(r.s.posts, postID)
	}

	delete(r.s.users, id)

	for sessionID, session := range r.s.sessions {
		if session.UserID == id {
			delete(r.s.sessions, sessionID)
		}
	}
	return nil
}

/* -------------------------- 投稿 -------------------------- */

type postStore struct {
	s *Store
}

func (r *postStore) Create(post *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextPostID++
	post.ID = r.s.nextPostID
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt

	stored := *post
	r.s.posts[post.ID] = &stored
	return nil
}

func (r *postStore) FindByID(id uint) (*models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	post, ok := r.s.posts[id]
	if !ok {
		return nil, fmt.Errorf("投稿が見つかりません: ID=%d", id)
	}
	p := *post
	r.s.attachAuthor(&p)
	return &p, nil
}

func (r *postStore) FindPage(page, limit int) ([]models.Post, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := make([]models.Post, 0, len(r.s.posts))
	for _, post := range r.s.posts {
		p := *post
		r.s.attachAuthor(&p)
		all = append(all, p)
	}

	// 新着順（同時刻はIDの降順）
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return []models.Post{}, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *postStore) Update(post *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[post.ID]; !ok {
		return fmt.Errorf("投稿が見つかりません: ID=%d", post.ID)
	}
	post.UpdatedAt = time.Now()
	stored := *post
	r.s.posts[post.ID] = &stored
	return nil
}

func (r *postStore) Delete(id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for commentID, comment := range r.s.comments {
		if comment.PostID == id {
			delete(r.s.comments, commentID)
		}
	}
	for key := range r.s.likes {
		if key.postID == id {
			delete(r.s.likes, key)
		}
	}
	delete(r.s.posts, id)
	return nil
}

func (r *postStore) IncrementViews(id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	post, ok := r.s.posts[id]
	if !ok {
		return fmt.Errorf("投稿が見つかりません: ID=%d", id)
	}
	post.Views++
	return nil
}

func (r *postStore) ToggleLike(postID, userID uint) (bool, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	post, ok := r.s.posts[postID]
	if !ok {
		return false, 0, fmt.Errorf("投稿が見つかりません: ID=%d", postID)
	}

	key := likeKey{postID: postID, userID: userID}
	if _, exists := r.s.likes[key]; exists {
		delete(r.s.likes, key)
		post.Likes--
		return false, post.Likes, nil
	}

	r.s.likes[key] = &models.Like{PostID: postID, UserID: userID, CreatedAt: time.Now()}
	post.Likes++
	return true, post.Likes, nil
}

func (r *postStore) ListByUser(userID uint) ([]models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	posts := make([]models.Post, 0)
	for _, post := range r.s.posts {
		if post.UserID == userID {
			posts = append(posts, *post)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].ID > posts[j].ID
	})
	return posts, nil
}

func (r *postStore) GetLikesCount(postID uint) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	count := 0
	for key := range r.s.likes {
		if key.postID == postID {
			count++
		}
	}
	return count, nil
}

func (r *postStore) HasLiked(postID, userID uint) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.likes[likeKey{postID: postID, userID: userID}]
	return ok, nil
}

/* -------------------------- コメント -------------------------- */

type commentStore struct {
	s *Store
}

func (r *commentStore) Create(comment *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextCommentID++
	comment.ID = r.s.nextCommentID
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = comment.CreatedAt

	stored := *comment
	r.s.comments[comment.ID] = &stored

	if post, ok := r.s.posts[comment.PostID]; ok {
		post.CommentsCount++
	}
	return nil
}

func (r *commentStore) FindByID(id uint) (*models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	comment, ok := r.s.comments[id]
	if !ok {
		return nil, fmt.Errorf("コメントが見つかりません: ID=%d", id)
	}
	c := *comment
	r.s.attachCommentAuthor(&c)
	return &c, nil
}

func (r *commentStore) ListByPost(postID uint) ([]models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	comments := make([]models.Comment, 0)
	for _, comment := range r.s.comments {
		if comment.PostID == postID {
			c := *comment
			r.s.attachCommentAuthor(&c)
			comments = append(comments, c)
		}
	}
	// 作成日時の昇順（同時刻はIDの昇順）
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].ID < comments[j].ID
		}
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

func (r *commentStore) UpdateOwned(commentID, postID, userID uint, content string) (*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	comment, ok := r.s.comments[commentID]
	if !ok || comment.PostID != postID || comment.UserID != userID {
		return nil, fmt.Errorf("コメントが見つかりません: ID=%d", commentID)
	}

	comment.Content = content
	comment.UpdatedAt = time.Now()

	c := *comment
	r.s.attachCommentAuthor(&c)
	return &c, nil
}

func (r *commentStore) DeleteOwned(commentID, postID, userID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	comment, ok := r.s.comments[commentID]
	if !ok || comment.PostID != postID || comment.UserID != userID {
		return fmt.Errorf("コメントが見つかりません: ID=%d", commentID)
	}

	delete(r.s.comments, commentID)
	if post, ok := r.s.posts[postID]; ok {
		post.CommentsCount--
	}
	return nil
}

/* -------------------------- セッション -------------------------- */

type sessionStore struct {
	s *Store
}

func (r *sessionStore) Create(session *models.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	session.CreatedAt = time.Now()
	stored := *session
	r.s.sessions[session.ID] = &stored
	return nil
}

func (r *sessionStore) FindByID(id string) (*models.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	session, ok := r.s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("セッションが見つかりません")
	}
	sess := *session
	return &sess, nil
}

func (r *sessionStore) Delete(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.sessions[id]; !ok {
		return fmt.Errorf("セッションが見つかりません")
	}
	delete(r.s.sessions, id)
	return nil
}

func (r *sessionStore) DeleteByUser(userID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, session := range r.s.sessions {
		if session.UserID == userID {
			delete(r.s.sessions, id)
		}
	}
	return nil
}
