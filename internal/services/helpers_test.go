package services

import (
	"fmt"
	"mime/multipart"
	"time"

	"github.com/yuni-community/community_backend/internal/config"
	"github.com/yuni-community/community_backend/internal/repository"
	"github.com/yuni-community/community_backend/internal/repository/memory"
)

// fakeStorage 保存と削除を記録するテスト用ストレージ
type fakeStorage struct {
	saved   int
	deleted []string
}

func (f *fakeStorage) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	f.saved++
	return fmt.Sprintf("/uploads/fake_%d.jpg", f.saved), nil
}

func (f *fakeStorage) Delete(fileURL string) error {
	f.deleted = append(f.deleted, fileURL)
	return nil
}

// testConfig テスト用の設定
func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			SessionSecret: "test-secret",
			SessionExpiry: time.Hour,
		},
	}
}

// newTestRepos インメモリのリポジトリ一式を作成
func newTestRepos() *repository.Repositories {
	return memory.New().Repositories()
}
