package services

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"path"
	"strings"

	"github.com/yuni-community/community_backend/internal/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// cloudinaryStorage Cloudinaryに保存するバックエンド
type cloudinaryStorage struct {
	cld *cloudinary.Cloudinary
	cfg *config.Config
}

func newCloudinaryStorage(cfg *config.Config) (StorageService, error) {
	cld, err := cloudinary.NewFromParams(
		cfg.Cloudinary.CloudName,
		cfg.Cloudinary.APIKey,
		cfg.Cloudinary.APISecret,
	)
	if err != nil {
		return nil, err
	}

	return &cloudinaryStorage{
		cld: cld,
		cfg: cfg,
	}, nil
}

// Save 画像をCloudinaryにアップロード
func (s *cloudinaryStorage) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	if err := validateImage(header, s.cfg); err != nil {
		return "", err
	}

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(file); err != nil {
		return "", fmt.Errorf("ファイルの読み込みに失敗しました: %v", err)
	}

	fileName := newFileName(header.Filename)
	publicID := strings.TrimSuffix(fileName, path.Ext(fileName))

	result, err := s.cld.Upload.Upload(context.Background(), buf, uploader.UploadParams{
		Folder:       s.cfg.Cloudinary.Folder,
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("Cloudinaryへのアップロードに失敗しました: %v", err)
	}

	return result.SecureURL, nil
}

// Delete Cloudinaryから画像を削除
// public_id はURL末尾のファイル名（拡張子なし）から復元する
func (s *cloudinaryStorage) Delete(fileURL string) error {
	if fileURL == "" {
		return nil
	}

	base := path.Base(strings.SplitN(fileURL, "?", 2)[0])
	publicID := s.cfg.Cloudinary.Folder + "/" + strings.TrimSuffix(base, path.Ext(base))

	_, err := s.cld.Upload.Destroy(context.Background(), uploader.DestroyParams{
		PublicID: publicID,
	})
	if err != nil {
		return fmt.Errorf("Cloudinaryからの削除に失敗しました: %v", err)
	}
	return nil
}
