package services

import (
	"testing"

	"github.com/yuni-community/community_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	repos := newTestRepos()
	svc := NewAuthService(repos.User, repos.Session, testConfig())

	user, err := svc.Register("taro@example.com", "password123", "taro", "")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, models.DefaultProfileImage, user.ProfileImage)
	assert.NotEqual(t, "password123", user.Password)

	// メールアドレスの重複
	_, err = svc.Register("taro@example.com", "password123", "jiro", "")
	assert.ErrorContains(t, err, "このメールアドレスは既に使用されています")

	// ニックネームの重複
	_, err = svc.Register("jiro@example.com", "password123", "taro", "")
	assert.ErrorContains(t, err, "このニックネームは既に使用されています")
}

func TestLoginAndSessionRevocation(t *testing.T) {
	repos := newTestRepos()
	svc := NewAuthService(repos.User, repos.Session, testConfig())

	registered, err := svc.Register("taro@example.com", "password123", "taro", "")
	require.NoError(t, err)

	// 誤った認証情報
	_, _, err = svc.Login("taro@example.com", "wrong-password")
	assert.ErrorContains(t, err, "メールアドレスまたはパスワードが正しくありません")
	_, _, err = svc.Login("nobody@example.com", "password123")
	assert.ErrorContains(t, err, "メールアドレスまたはパスワードが正しくありません")

	user, token, err := svc.Login("taro@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	require.NotEmpty(t, token)

	// トークンからユーザーを取得できる
	current, err := svc.GetUserFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, current.ID)

	// ログアウト後はセッション行が消え、同じトークンでも無効になる
	require.NoError(t, svc.Logout(token))
	_, err = svc.GetUserFromToken(token)
	assert.Error(t, err)

	// 二重ログアウト
	assert.ErrorContains(t, svc.Logout(token), "ログインしていません")
}

func TestGetUserFromTokenRejectsGarbage(t *testing.T) {
	repos := newTestRepos()
	svc := NewAuthService(repos.User, repos.Session, testConfig())

	_, err := svc.GetUserFromToken("not-a-token")
	assert.Error(t, err)
}

func TestChangePassword(t *testing.T) {
	repos := newTestRepos()
	svc := NewAuthService(repos.User, repos.Session, testConfig())

	user, err := svc.Register("taro@example.com", "password123", "taro", "")
	require.NoError(t, err)

	// 現在のパスワードと同じ場合は拒否
	err = svc.ChangePassword(user.ID, "password123")
	assert.ErrorContains(t, err, "新しいパスワードが現在のパスワードと同じです")

	require.NoError(t, svc.ChangePassword(user.ID, "new-password456"))

	// 新しいパスワードでログインできる
	_, _, err = svc.Login("taro@example.com", "new-password456")
	require.NoError(t, err)
	_, _, err = svc.Login("taro@example.com", "password123")
	assert.Error(t, err)
}
