package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/pageza/foodshare/backend/config"
)

const recipeImagePrefix = "recipes/images"

// ImageStore persists recipe images and returns the URL they are served at
type ImageStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// ErrKeyOutsideRoot is returned by LocalImageStore for keys that would
// resolve outside the media root.
var ErrKeyOutsideRoot = errors.New("image key escapes media root")

var mimeSubtype = regexp.MustCompile(`^[a-z0-9.+-]+$`)

// DecodedImage is the payload of a data URI
type DecodedImage struct {
	ContentType string
	Extension   string
	Data        []byte
}

// DecodeDataURI parses "data:image/<subtype>;base64,<payload>". The file
// extension is the MIME subtype without any "+suffix" (image/svg+xml → svg).
// Subtypes are matched case-insensitively and may only contain letters,
// digits, '.', '+' and '-'.
func DecodeDataURI(uri string) (*DecodedImage, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, ErrInvalidImage
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, ErrInvalidImage
	}
	contentType, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return nil, ErrInvalidImage
	}

	contentType = strings.ToLower(contentType)
	major, subtype, ok := strings.Cut(contentType, "/")
	if !ok || major != "image" || !mimeSubtype.MatchString(subtype) {
		return nil, ErrInvalidImage
	}
	ext, _, _ := strings.Cut(subtype, "+")
	if ext == "" {
		return nil, ErrInvalidImage
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			return nil, ErrInvalidImage
		}
	}
	if len(data) == 0 {
		return nil, ErrInvalidImage
	}

	return &DecodedImage{ContentType: contentType, Extension: ext, Data: data}, nil
}

// storedImage is an image that has been written to an ImageStore
type storedImage struct {
	Key string
	URL string
}

// storeImage decodes a data URI and saves it under a fresh key
func storeImage(ctx context.Context, images ImageStore, uri string) (storedImage, error) {
	img, err := DecodeDataURI(uri)
	if err != nil {
		return storedImage{}, err
	}
	key := path.Join(recipeImagePrefix, fmt.Sprintf("%s.%s", uuid.New().String(), img.Extension))
	url, err := images.Save(ctx, key, img.Data, img.ContentType)
	if err != nil {
		return storedImage{}, fmt.Errorf("failed to store image: %w", err)
	}
	return storedImage{Key: key, URL: url}, nil
}

// S3ImageStore uploads images to a bucket
type S3ImageStore struct {
	s3Config *config.S3Config
}

func NewS3ImageStore(s3Config *config.S3Config) *S3ImageStore {
	return &S3ImageStore{s3Config: s3Config}
}

func (s *S3ImageStore) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return s.s3Config.PublicURL(key), nil
}

func (s *S3ImageStore) Delete(ctx context.Context, key string) error {
	_, err := s.s3Config.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.s3Config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// LocalImageStore writes images below a media root that the router serves
type LocalImageStore struct {
	root    string
	baseURL string
}

func NewLocalImageStore(root, baseURL string) *LocalImageStore {
	return &LocalImageStore{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (s *LocalImageStore) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	dest, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return s.baseURL + "/" + key, nil
}

func (s *LocalImageStore) Delete(ctx context.Context, key string) error {
	dest, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(dest); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove image: %w", err)
	}
	return nil
}

// path resolves key below the media root
func (s *LocalImageStore) path(key string) (string, error) {
	root := filepath.Clean(s.root)
	dest := filepath.Join(root, filepath.FromSlash(key))
	rel, err := filepath.Rel(root, dest)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrKeyOutsideRoot
	}
	return dest, nil
}
