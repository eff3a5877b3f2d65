package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/yuni-community/community_backend/internal/config"
)

// StorageService 画像ブロブの保存と削除を行うインターフェース
// Save は公開URLを返す。Delete はベストエフォートで呼ばれる前提
type StorageService interface {
	Save(file multipart.File, header *multipart.FileHeader) (string, error)
	Delete(fileURL string) error
}

// NewStorageService 設定に応じたストレージバックエンドを作成
func NewStorageService(cfg *config.Config) (StorageService, error) {
	switch cfg.Storage.Type {
	case "s3":
		return newS3Storage(cfg)
	case "cloudinary":
		return newCloudinaryStorage(cfg)
	case "local", "":
		return newLocalStorage(cfg), nil
	default:
		return nil, fmt.Errorf("不明なストレージタイプです: %s", cfg.Storage.Type)
	}
}

// validateImage 拡張子とファイルサイズをチェック
func validateImage(header *multipart.FileHeader, cfg *config.Config) error {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	allowed := false
	for _, a := range cfg.Storage.AllowedTypes {
		if strings.EqualFold(ext, a) {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("拡張子 %s は許可されていません", ext)
	}
	if header.Size > cfg.Storage.MaxUploadSize {
		return fmt.Errorf("ファイルサイズが大きすぎます (最大 %d MB)", cfg.Storage.MaxUploadSize/1024/1024)
	}
	return nil
}

// newFileName 保存用のファイル名を生成
// 元のファイル名は使わず、タイムスタンプ + ランダム16進で衝突を避ける
func newFileName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%d_%s%s", time.Now().Unix(), randomHex(8), ext)
}

// randomHex 指定した桁数のランダム16進文字列を返す
func randomHex(n int) string {
	buf := make([]byte, (n+1)/2)
	if _, err := rand.Read(buf); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 16)
	}
	return hex.EncodeToString(buf)[:n]
}

/* -------------------------- ローカルディスク -------------------------- */

// localStorage UPLOAD_DIR 配下に保存し /uploads で配信するバックエンド
type localStorage struct {
	cfg *config.Config
}

func newLocalStorage(cfg *config.Config) StorageService {
	return &localStorage{cfg: cfg}
}

// Save ファイルをローカルディスクに保存
func (s *localStorage) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	if err := validateImage(header, s.cfg); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.cfg.Storage.UploadDir, 0755); err != nil {
		return "", err
	}

	fileName := newFileName(header.Filename)
	dstPath := filepath.Join(s.cfg.Storage.UploadDir, fileName)

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", err
	}

	return "/uploads/" + fileName, nil
}

// Delete ローカルディスクからファイルを削除
func (s *localStorage) Delete(fileURL string) error {
	if !strings.HasPrefix(fileURL, "/uploads/") {
		return nil
	}
	return os.Remove(filepath.Join(s.cfg.Storage.UploadDir, filepath.Base(fileURL)))
}
