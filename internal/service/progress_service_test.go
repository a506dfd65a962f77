package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Lagergrenk/grindmode-sub001/internal/domain"
	"github.com/Lagergrenk/grindmode-sub001/internal/identity"
	"github.com/Lagergrenk/grindmode-sub001/internal/repository"
	"github.com/Lagergrenk/grindmode-sub001/internal/repository/memory"
	"github.com/Lagergrenk/grindmode-sub001/internal/service"
	"github.com/Lagergrenk/grindmode-sub001/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockFileStorage struct {
	mock.Mock
}

func (m *mockFileStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey, contentType string, expires time.Duration) (string, error) {
	args := m.Called(ctx, objectKey, contentType, expires)
	return args.String(0), args.Error(1)
}

func (m *mockFileStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	args := m.Called(ctx, objectKey, expires)
	return args.String(0), args.Error(1)
}

func (m *mockFileStorage) DeleteObject(ctx context.Context, objectKey string) error {
	args := m.Called(ctx, objectKey)
	return args.Error(0)
}

func progressFor(store repository.Store, user string, fs storage.FileStorage) service.ProgressService {
	photos := repository.NewScopedRepository[domain.ProgressPhoto](store, identity.Static(user), service.ProgressCollection)
	return service.NewProgressService(photos, identity.Static(user), fs)
}

func TestRequestUploadURL(t *testing.T) {
	ctx := context.Background()
	fs := &mockFileStorage{}
	fs.On("GeneratePresignedUploadURL", ctx, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "users/alice/progress/") && strings.HasSuffix(key, ".jpg")
	}), "image/jpeg", storage.DefaultPresignedURLExpiry).Return("https://s3/put", nil).Once()

	svc := progressFor(memory.NewStore(), "alice", fs)
	resp, err := svc.RequestUploadURL(ctx, "Front.JPG", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://s3/put", resp.UploadURL)
	assert.True(t, strings.HasPrefix(resp.ObjectKey, storage.ProgressPhotoPrefix("alice")))

	_, err = svc.RequestUploadURL(ctx, "notes.txt", "text/plain")
	require.ErrorIs(t, err, repository.ErrInvalidArgument)
	fs.AssertExpectations(t)
}

func TestConfirmListDeletePhoto(t *testing.T) {
	ctx := context.Background()
	fs := &mockFileStorage{}
	svc := progressFor(memory.NewStore(), "alice", fs)

	_, err := svc.ConfirmUpload(ctx, &domain.ProgressPhoto{ObjectKey: "users/bob/progress/x.jpg", ContentType: "image/jpeg"})
	require.ErrorIs(t, err, repository.ErrInvalidArgument)

	key := storage.ProgressPhotoKey("alice", "front.jpg")
	photo, err := svc.ConfirmUpload(ctx, &domain.ProgressPhoto{ObjectKey: key, FileName: "front.jpg", ContentType: "image/jpeg", Size: 1024})
	require.NoError(t, err)
	require.NotEmpty(t, photo.ID)
	assert.False(t, photo.Date.IsZero())

	fs.On("GeneratePresignedDownloadURL", ctx, key, storage.DefaultPresignedURLExpiry).Return("https://s3/get", nil).Once()
	list, err := svc.ListPhotos(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "https://s3/get", list[0].DownloadURL)
	assert.Equal(t, key, list[0].ObjectKey)

	fs.On("GeneratePresignedDownloadURL", ctx, key, storage.DefaultPresignedURLExpiry).Return("", errors.New("signer down")).Once()
	list, err = svc.ListPhotos(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].DownloadURL)

	fs.On("DeleteObject", ctx, key).Return(errors.New("access denied")).Once()
	require.Error(t, svc.DeletePhoto(ctx, photo.ID))
	fs.On("GeneratePresignedDownloadURL", ctx, key, storage.DefaultPresignedURLExpiry).Return("https://s3/get", nil).Once()
	list, err = svc.ListPhotos(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1, "metadata survives a failed object delete")

	fs.On("DeleteObject", ctx, key).Return(nil).Once()
	require.NoError(t, svc.DeletePhoto(ctx, photo.ID))
	require.ErrorIs(t, svc.DeletePhoto(ctx, photo.ID), service.ErrPhotoNotFound)
	fs.AssertExpectations(t)
}

func TestProgress_StorageDisabled(t *testing.T) {
	svc := progressFor(memory.NewStore(), "alice", nil)
	_, err := svc.RequestUploadURL(context.Background(), "a.jpg", "image/jpeg")
	require.ErrorIs(t, err, service.ErrStorageDisabled)
	_, err = svc.ListPhotos(context.Background())
	require.ErrorIs(t, err, service.ErrStorageDisabled)
}
