package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const (
	// photoFolder is the fixed prefix for location photos. Every photo is
	// stored as locations/<uuid>.jpg regardless of the uploaded filename.
	photoFolder = "locations"
	photoExt    = ".jpg"

	photoContentType = "image/jpeg"
	maxPhotoSize     = 10 << 20 // 10 MiB
	presignExpiry    = 15 * time.Minute
)

// PhotoStorage issues pre-signed S3 PUT URLs for location photos. Clients
// upload directly to S3; the server never proxies image bytes.
type PhotoStorage struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

type PresignedUpload struct {
	UploadURL string `json:"upload_url"`
	PhotoURL  string `json:"photo_url"`
	Key       string `json:"key"`
}

func NewPhotoStorage(region, bucket, accessKeyID, secretAccessKey, baseURL string) *PhotoStorage {
	var cfg aws.Config
	var err error

	if accessKeyID != "" && secretAccessKey != "" {
		cfg = aws.Config{
			Region: region,
			Credentials: credentials.NewStaticCredentialsProvider(
				accessKeyID,
				secretAccessKey,
				"",
			),
		}
	} else {
		// Fall back to the default chain (env vars, shared config, IAM role).
		cfg, err = awsconfig.LoadDefaultConfig(context.TODO(),
			awsconfig.WithRegion(region),
		)
		if err != nil {
			cfg = aws.Config{Region: region}
		}
	}

	return &PhotoStorage{
		client:  s3.NewFromConfig(cfg),
		bucket:  bucket,
		baseURL: baseURL,
	}
}

// PresignPhotoUpload returns a short-lived PUT URL for a new photo key.
// The key is server-generated so clients cannot overwrite each other's
// uploads.
func (s *PhotoStorage) PresignPhotoUpload(ctx context.Context, contentType string, size int64) (*PresignedUpload, error) {
	if contentType != photoContentType {
		return nil, fmt.Errorf("content type %s is not allowed, photos must be %s", contentType, photoContentType)
	}
	if size > maxPhotoSize {
		return nil, fmt.Errorf("photo exceeds the maximum size of %d bytes", int64(maxPhotoSize))
	}

	key := fmt.Sprintf("%s/%s%s", photoFolder, uuid.New().String(), photoExt)

	presignClient := s3.NewPresignClient(s.client)
	presignedReq, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	var photoURL string
	if s.baseURL != "" {
		photoURL = fmt.Sprintf("%s/%s", s.baseURL, key)
	} else {
		photoURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.client.Options().Region, key)
	}

	return &PresignedUpload{
		UploadURL: presignedReq.URL,
		PhotoURL:  photoURL,
		Key:       key,
	}, nil
}
