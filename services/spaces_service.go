package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/reinos-tcg/backend/config"
)

// SpacesService fetches card artwork from an S3-compatible Spaces bucket.
// The catalog only ever reads from it; uploads happen out of band.
type SpacesService struct {
	client   *s3.Client
	bucket   string
	cardRoot string
}

func NewSpacesService(cfg config.SpacesConfig) (*SpacesService, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithEndpointResolverWithOptions(resolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.Key, cfg.Secret, "")),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load Spaces config: %w", err)
	}

	return &SpacesService{
		client:   s3.NewFromConfig(awsCfg),
		bucket:   cfg.Bucket,
		cardRoot: strings.TrimPrefix(cfg.CardRoot, "/"),
	}, nil
}

// GetCardImage returns the image bytes and content type for a card key.
// The key is the card's idGlobal; the layout under cardRoot is flat.
func (s *SpacesService) GetCardImage(ctx context.Context, key string) ([]byte, string, error) {
	objectKey := fmt.Sprintf("%s/%s.jpg", s.cardRoot, key)

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &objectKey,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch image %s: %w", objectKey, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image %s: %w", objectKey, err)
	}

	contentType := "image/jpeg"
	if out.ContentType != nil {
		contentType = *out.ContentType
	}
	return data, contentType, nil
}
