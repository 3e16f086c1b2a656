package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const downloadURLLifetime = time.Hour

type StorageService interface {
	UploadProfilePicture(ctx context.Context, data []byte, fileName string) (string, error)
	DownloadURL(ctx context.Context, fileName string) (string, error)
}

// S3StorageService stores profile pictures in an S3-compatible bucket
// under images/{fileName}, the same layout the mobile client uses.
type S3StorageService struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

func NewS3StorageService(accessKey, secretKey, endpoint, region, bucket, publicBaseURL string) *S3StorageService {
	cfg := aws.Config{
		Credentials: credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		Region:      region,
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3StorageService{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (s *S3StorageService) UploadProfilePicture(ctx context.Context, data []byte, fileName string) (string, error) {
	key := "images/" + fileName
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(http.DetectContentType(data)),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key, nil
	}
	return s.DownloadURL(ctx, fileName)
}

func (s *S3StorageService) DownloadURL(ctx context.Context, fileName string) (string, error) {
	presigner := s3.NewPresignClient(s.client)
	req, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String("images/" + fileName),
	}, s3.WithPresignExpires(downloadURLLifetime))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", fileName, err)
	}
	return req.URL, nil
}
