package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"

	"github.com/yuni-community/community_backend/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// s3Storage S3に保存し CloudFront 経由のURLを返すバックエンド
type s3Storage struct {
	cfg    *config.Config
	client *s3.S3
}

func newS3Storage(cfg *config.Config) (StorageService, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
	})
	if err != nil {
		return nil, fmt.Errorf("AWSセッションの初期化に失敗しました: %v", err)
	}

	return &s3Storage{
		cfg:    cfg,
		client: s3.New(sess),
	}, nil
}

// Save ファイルをS3にアップロード
func (s *s3Storage) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	if err := validateImage(header, s.cfg); err != nil {
		return "", err
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}

	fileName := newFileName(header.Filename)
	contentType := header.Header.Get("Content-Type")

	_, err = s.client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.AWS.Bucket),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(fileBytes),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("S3へのアップロードに失敗しました: %v", err)
	}

	if s.cfg.AWS.CloudFrontURL != "" {
		return s.cfg.AWS.CloudFrontURL + "/" + fileName, nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.AWS.Bucket, s.cfg.AWS.Region, fileName), nil
}

// Delete S3からファイルを削除
func (s *s3Storage) Delete(fileURL string) error {
	key := path.Base(strings.SplitN(fileURL, "?", 2)[0])
	if key == "" || key == "." || key == "/" {
		return nil
	}

	_, err := s.client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.AWS.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("S3からの削除に失敗しました: %v", err)
	}
	return nil
}
