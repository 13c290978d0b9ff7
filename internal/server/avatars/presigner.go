// Package avatars hands out presigned S3 URLs for user avatar images. The
// user record only stores the object key; the bytes never pass through
// this service.
package avatars

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// KeyPrefix marks picture references that live in the avatar bucket.
const KeyPrefix = "avatars/"

const presignExpiry = 15 * time.Minute

var (
	// ErrAvatarsDisabled is returned when no bucket is configured.
	ErrAvatarsDisabled = errors.New("avatar storage is not configured")

	// ErrNotUploaded is returned when a confirmed key has no object behind it.
	ErrNotUploaded = errors.New("avatar has not been uploaded")
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	headObject = func(c *s3.Client, ctx context.Context, in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
		return c.HeadObject(ctx, in)
	}
)

// Settings describe the S3-compatible endpoint.
type Settings struct {
	AccessKey    string
	SecretKey    string
	Bucket       string
	Region       string
	BaseEndpoint string
}

// Presigner issues presigned avatar URLs.
type Presigner struct {
	settings Settings
}

func NewPresigner(s Settings) *Presigner {
	return &Presigner{settings: s}
}

// Enabled reports whether a bucket is configured.
func (p *Presigner) Enabled() bool {
	return p != nil && p.settings.Bucket != ""
}

// OwnsKey reports whether key was issued for userID by PresignUpload.
func OwnsKey(userID, key string) bool {
	rest, ok := strings.CutPrefix(key, KeyPrefix+userID+"/")
	return ok && rest != "" && !strings.Contains(rest, "/")
}

// IsObjectKey reports whether ref points into the avatar bucket rather than
// being an external URL.
func IsObjectKey(ref string) bool {
	return strings.HasPrefix(ref, KeyPrefix)
}

// NewKey returns a fresh object key for userID.
func NewKey(userID string) string {
	return fmt.Sprintf("%s%s/%s", KeyPrefix, userID, uuid.NewString())
}

// PresignUpload returns a new object key for userID and a URL the client
// can PUT the image to.
func (p *Presigner) PresignUpload(ctx context.Context, userID string) (string, string, error) {
	pc, err := p.presignClient(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := p.settings.Bucket
	key := NewKey(userID)

	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", "", fmt.Errorf("presign put: %w", err)
	}

	return key, req.URL, nil
}

// PresignDownload returns a URL the avatar at key can be fetched from.
func (p *Presigner) PresignDownload(ctx context.Context, key string) (string, error) {
	pc, err := p.presignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := p.settings.Bucket

	req, err := presignGetObject(pc, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}

	return req.URL, nil
}

// ObjectExists reports whether an object is stored under key. A missing
// object is (false, nil); any other S3 failure is returned.
func (p *Presigner) ObjectExists(ctx context.Context, key string) (bool, error) {
	client, err := p.client(ctx)
	if err != nil {
		return false, err
	}

	bucket := p.settings.Bucket

	_, err = headObject(client, ctx, &s3.HeadObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	var nf *types.NotFound
	switch {
	case errors.As(err, &nf):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("head object: %w", err)
	}
	return true, nil
}

func (p *Presigner) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	client, err := p.client(ctx)
	if err != nil {
		return nil, err
	}
	return newS3PresignClient(client), nil
}

func (p *Presigner) client(ctx context.Context) (*s3.Client, error) {
	if !p.Enabled() {
		return nil, ErrAvatarsDisabled
	}

	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(p.settings.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			p.settings.AccessKey,
			p.settings.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if p.settings.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(p.settings.BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return client, nil
}
