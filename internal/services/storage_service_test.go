package services

import (
	"mime/multipart"
	"strings"
	"testing"

	"github.com/yuni-community/community_backend/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestNewFileName(t *testing.T) {
	name := newFileName("写真.JPG")

	// 元のファイル名は残さず、拡張子は小文字化する
	assert.True(t, strings.HasSuffix(name, ".jpg"))
	assert.NotContains(t, name, "写真")

	// ランダム部分で衝突を避ける
	assert.NotEqual(t, newFileName("a.png"), newFileName("a.png"))
}

func TestRandomHex(t *testing.T) {
	s := randomHex(8)
	assert.Len(t, s, 8)
	assert.NotEqual(t, randomHex(8), randomHex(8))

	// 奇数桁も指定どおりの長さになる
	assert.Len(t, randomHex(7), 7)
}

func TestValidateImage(t *testing.T) {
	cfg := &config.Config{
		Storage: config.StorageConfig{
			MaxUploadSize: 1024,
			AllowedTypes:  []string{".png", ".jpg", ".jpeg"},
		},
	}

	assert.NoError(t, validateImage(&multipart.FileHeader{Filename: "a.png", Size: 100}, cfg))
	assert.NoError(t, validateImage(&multipart.FileHeader{Filename: "A.PNG", Size: 100}, cfg))

	err := validateImage(&multipart.FileHeader{Filename: "a.exe", Size: 100}, cfg)
	assert.ErrorContains(t, err, "許可されていません")

	err = validateImage(&multipart.FileHeader{Filename: "a.png", Size: 4096}, cfg)
	assert.ErrorContains(t, err, "大きすぎます")
}
