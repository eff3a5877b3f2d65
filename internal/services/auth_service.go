package services

import (
	"errors"
	"time"

	"github.com/yuni-community/community_backend/internal/config"
	"github.com/yuni-community/community_backend/internal/models"
	"github.com/yuni-community/community_backend/internal/repository"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 認証に関するサービスインターフェース
// ログインでサーバー側にセッション行を作り、セッションIDを載せた
// 署名付きトークンを返す。ログアウト・退会で行を消せば即時無効になる
type AuthService interface {
	Register(email, password, nickname, profileImage string) (*models.User, error)
	Login(email, password string) (*models.User, string, error)
	Logout(tokenString string) error
	GetUserFromToken(tokenString string) (*models.User, error)
	ChangePassword(userID uint, newPassword string) error
}

// authService AuthServiceの実装
type authService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	config      *config.Config
}

// NewAuthService AuthServiceを作成
func NewAuthService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, cfg *config.Config) AuthService {
	return &authService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		config:      cfg,
	}
}

// Claims セッショントークンのペイロード
type Claims struct {
	SessionID string `json:"session_id"`
	UserID    uint   `json:"user_id"`
	jwt.StandardClaims
}

// Register ユーザー登録
func (s *authService) Register(email, password, nickname, profileImage string) (*models.User, error) {
	// メールアドレスが既に使用されているか確認
	if existing, err := s.userRepo.FindByEmail(email); err == nil && existing != nil {
		return nil, errors.New("このメールアドレスは既に使用されています")
	}

	// ニックネームが既に使用されているか確認
	if existing, err := s.userRepo.FindByNickname(nickname); err == nil && existing != nil {
		return nil, errors.New("このニックネームは既に使用されています")
	}

	// パスワードをハッシュ化
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	if profileImage == "" {
		profileImage = models.DefaultProfileImage
	}

	user := &models.User{
		Email:        email,
		Password:     string(hashedPassword),
		Nickname:     nickname,
		ProfileImage: profileImage,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login ログイン
func (s *authService) Login(email, password string) (*models.User, string, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, "", errors.New("メールアドレスまたはパスワードが正しくありません")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", errors.New("メールアドレスまたはパスワードが正しくありません")
	}

	// セッション行を作成
	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.config.Auth.SessionExpiry),
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, "", err
	}

	token, err := s.generateToken(session)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Logout セッションを破棄
func (s *authService) Logout(tokenString string) error {
	claims, err := s.validateToken(tokenString)
	if err != nil {
		return errors.New("ログインしていません")
	}
	if err := s.sessionRepo.Delete(claims.SessionID); err != nil {
		return errors.New("ログインしていません")
	}
	return nil
}

// GetUserFromToken トークンを検証し、生きているセッションのユーザーを返す
func (s *authService) GetUserFromToken(tokenString string) (*models.User, error) {
	claims, err := s.validateToken(tokenString)
	if err != nil {
		return nil, err
	}

	// セッション行が残っているか確認（ログアウト・退会で消える）
	session, err := s.sessionRepo.FindByID(claims.SessionID)
	if err != nil {
		return nil, errors.New("セッションが無効です")
	}
	if time.Now().After(session.ExpiresAt) {
		_ = s.sessionRepo.Delete(session.ID)
		return nil, errors.New("セッションの有効期限が切れています")
	}

	return s.userRepo.FindByID(session.UserID)
}

// ChangePassword パスワードを変更
func (s *authService) ChangePassword(userID uint, newPassword string) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return err
	}

	// 現在のパスワードと同じ場合は拒否
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(newPassword)); err == nil {
		return errors.New("新しいパスワードが現在のパスワードと同じです")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.Password = string(hashedPassword)
	return s.userRepo.Update(user)
}

// generateToken セッショントークンを生成
func (s *authService) generateToken(session *models.Session) (string, error) {
	claims := &Claims{
		SessionID: session.ID,
		UserID:    session.UserID,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: session.ExpiresAt.Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Auth.SessionSecret))
}

// validateToken トークンを検証
func (s *authService) validateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.Auth.SessionSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("無効なトークンです")
	}

	return claims, nil
}
