package upload

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/minio/minio-go/v7"
	"go.uber.org/fx"

	"trustfund-backend/pkg/config"
	"trustfund-backend/pkg/errutil"
)

// MaxImageSize caps campaign image uploads at 5 MiB.
const MaxImageSize = 5 << 20

var allowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

type Service struct {
	client *minio.Client
	node   *snowflake.Node
	bucket string
	secure bool
	host   string
}

type ServiceParams struct {
	fx.In

	Client *minio.Client
	Node   *snowflake.Node
	Config *config.Config
}

func NewService(p ServiceParams) *Service {
	return &Service{
		client: p.Client,
		node:   p.Node,
		bucket: p.Config.Minio.BucketName,
		secure: p.Config.Minio.Secure,
		host:   p.Config.Minio.Endpoint,
	}
}

// StoreCampaignImage uploads the file under campaigns/<id>/ and returns the
// public object URL.
func (s *Service) StoreCampaignImage(ctx context.Context, campaignID string, header *multipart.FileHeader) (string, error) {
	return s.storeImage(ctx, "campaigns", campaignID, header)
}

// StoreProfileImage uploads a user avatar under profiles/<id>/.
func (s *Service) StoreProfileImage(ctx context.Context, userID string, header *multipart.FileHeader) (string, error) {
	return s.storeImage(ctx, "profiles", userID, header)
}

func (s *Service) storeImage(ctx context.Context, prefix, ownerID string, header *multipart.FileHeader) (string, error) {
	if header.Size > MaxImageSize {
		return "", errutil.ValidationFailed("Image exceeds the 5MB limit")
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		return "", errutil.ValidationFailed("Only jpg, png and webp images are accepted")
	}

	file, err := header.Open()
	if err != nil {
		return "", errutil.Internal("Failed to read upload", errutil.WithErr(err))
	}
	defer file.Close()

	objectName := fmt.Sprintf("%s/%s/%s%s", prefix, ownerID, s.node.Generate().String(), ext)
	if _, err := s.client.PutObject(ctx, s.bucket, objectName, file, header.Size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return "", errutil.Internal("Failed to store image", errutil.WithErr(err))
	}

	scheme := "http"
	if s.secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.host, s.bucket, objectName), nil
}
