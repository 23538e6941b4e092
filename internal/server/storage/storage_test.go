package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/cryptoestate/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhotoKey(t *testing.T) {
	k1 := PhotoKey(42, ".PNG")
	k2 := PhotoKey(42, ".PNG")

	assert.Regexp(t, regexp.MustCompile(`^properties/42/\d{4}/\d{2}/[0-9a-f-]{36}\.png$`), k1)
	assert.NotEqual(t, k1, k2)
}

func TestLocalStorage_Save(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "/uploads/")
	require.NoError(t, err)

	url, err := s.Save(context.Background(), "properties/1/a.png", []byte("img"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/properties/1/a.png", url)

	b, err := os.ReadFile(filepath.Join(dir, "properties", "1", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "img", string(b))
}

func TestLocalStorage_RejectsEscapingKey(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	_, err = s.Save(context.Background(), "../outside.png", []byte("x"), "")
	assert.Error(t, err)
}

func TestLocalStorage_CanceledContext(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Save(ctx, "a.png", []byte("x"), "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalStorage_Delete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "/uploads")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Save(ctx, "properties/1/a.png", []byte("img"), "")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "properties/1/a.png"))
	_, err = os.Stat(filepath.Join(dir, "properties", "1", "a.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	assert.NoError(t, s.Delete(ctx, "properties/1/a.png"), "missing key")
	assert.Error(t, s.Delete(ctx, "../outside.png"))
}

func s3Config() *config.Config {
	return &config.Config{
		StorageBackend: config.StorageS3,
		S3Region:       "us-east-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000/",
		S3Bucket:       "estate",
	}
}

func TestNewS3Storage_LoadConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}

	_, err := NewS3Storage(context.Background(), s3Config())
	assert.EqualError(t, err, "load-fail")
}

func TestS3Storage_Save(t *testing.T) {
	origPut := putObject
	t.Cleanup(func() { putObject = origPut })

	var got *s3.PutObjectInput
	var body []byte
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		got = in
		body, _ = io.ReadAll(in.Body)
		return &s3.PutObjectOutput{}, nil
	}

	s, err := NewS3Storage(context.Background(), s3Config())
	require.NoError(t, err)

	url, err := s.Save(context.Background(), "properties/1/a.webp", []byte("webp"), "image/webp")
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:9000/estate/properties/1/a.webp", url)
	require.NotNil(t, got)
	assert.Equal(t, "estate", aws.ToString(got.Bucket))
	assert.Equal(t, "properties/1/a.webp", aws.ToString(got.Key))
	assert.Equal(t, "image/webp", aws.ToString(got.ContentType))
	assert.Equal(t, int64(4), aws.ToInt64(got.ContentLength))
	assert.Equal(t, "webp", string(body))
}

func TestS3Storage_SaveError(t *testing.T) {
	origPut := putObject
	t.Cleanup(func() { putObject = origPut })
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return nil, errors.New("bucket missing")
	}

	s, err := NewS3Storage(context.Background(), s3Config())
	require.NoError(t, err)

	_, err = s.Save(context.Background(), "k", []byte("x"), "")
	assert.ErrorContains(t, err, "bucket missing")
}

func TestS3Storage_Delete(t *testing.T) {
	origDel := deleteObject
	t.Cleanup(func() { deleteObject = origDel })

	var got *s3.DeleteObjectInput
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
		got = in
		if aws.ToString(in.Key) == "broken" {
			return nil, errors.New("access denied")
		}
		return &s3.DeleteObjectOutput{}, nil
	}

	s, err := NewS3Storage(context.Background(), s3Config())
	require.NoError(t, err)

	require.NoError(t, s.Delete(context.Background(), "properties/1/a.webp"))
	require.NotNil(t, got)
	assert.Equal(t, "estate", aws.ToString(got.Bucket))
	assert.Equal(t, "properties/1/a.webp", aws.ToString(got.Key))

	assert.ErrorContains(t, s.Delete(context.Background(), "broken"), "access denied")
}

func TestNew_SelectsBackend(t *testing.T) {
	local, err := New(context.Background(), &config.Config{StorageBackend: config.StorageLocal, UploadDir: t.TempDir(), UploadBaseURL: "/uploads"})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, local)

	remote, err := New(context.Background(), s3Config())
	require.NoError(t, err)
	assert.IsType(t, &S3Storage{}, remote)

	_, err = New(context.Background(), &config.Config{StorageBackend: "ftp"})
	assert.Error(t, err)
}
