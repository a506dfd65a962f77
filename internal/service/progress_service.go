package service

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/Lagergrenk/grindmode-sub001/internal/domain"
	"github.com/Lagergrenk/grindmode-sub001/internal/repository"
	"github.com/Lagergrenk/grindmode-sub001/internal/storage"
	"github.com/google/uuid"
)

// UploadURLResponse structure for returning URL and object key
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"` // The key client needs to report back on confirm
}

// PhotoDetails is a photo with a temporary URL for viewing it.
type PhotoDetails struct {
	*domain.ProgressPhoto
	DownloadURL string `json:"downloadUrl,omitempty"`
}

type ProgressService interface {
	RequestUploadURL(ctx context.Context, fileName, contentType string) (*UploadURLResponse, error)
	ConfirmUpload(ctx context.Context, photo *domain.ProgressPhoto) (*domain.ProgressPhoto, error)
	ListPhotos(ctx context.Context) ([]PhotoDetails, error)
	DeletePhoto(ctx context.Context, id string) error
}

type progressService struct {
	photos      repository.Repository[domain.ProgressPhoto]
	identity    repository.IdentityResolver
	fileStorage storage.FileStorage
	logger      *slog.Logger
}

// NewProgressService creates a ProgressService. fileStorage may be nil, in which case
// every operation fails with ErrStorageDisabled.
func NewProgressService(
	photos repository.Repository[domain.ProgressPhoto],
	identity repository.IdentityResolver,
	fileStorage storage.FileStorage,
	opts ...Option,
) ProgressService {
	o := buildOptions(opts)
	return &progressService{
		photos:      photos,
		identity:    identity,
		fileStorage: fileStorage,
		logger:      o.logger.With("service", "progress"),
	}
}

// RequestUploadURL reserves an object key under the user's folder and presigns a PUT for it.
func (s *progressService) RequestUploadURL(ctx context.Context, fileName, contentType string) (*UploadURLResponse, error) {
	if s.fileStorage == nil {
		return nil, ErrStorageDisabled
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: content type %q is not an image", repository.ErrInvalidArgument, contentType)
	}
	userID, err := s.identity.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	objectKey := storage.ProgressPhotoKey(userID, uuid.NewString()+strings.ToLower(path.Ext(fileName)))
	url, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, fail(s.logger, nil, "presign upload", err)
	}
	return &UploadURLResponse{UploadURL: url, ObjectKey: objectKey}, nil
}

// ConfirmUpload records metadata for an uploaded object. The key must be in the user's folder.
func (s *progressService) ConfirmUpload(ctx context.Context, photo *domain.ProgressPhoto) (*domain.ProgressPhoto, error) {
	if s.fileStorage == nil {
		return nil, ErrStorageDisabled
	}
	if photo == nil {
		return nil, repository.ErrInvalidArgument
	}
	userID, err := s.identity.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(photo.ObjectKey, storage.ProgressPhotoPrefix(userID)) {
		return nil, fmt.Errorf("%w: object key is outside the user's folder", repository.ErrInvalidArgument)
	}

	var opts []repository.AddOption
	if photo.Date.IsZero() {
		opts = append(opts, repository.StampDate())
	}
	if _, err := s.photos.Add(ctx, photo, opts...); err != nil {
		return nil, fail(s.logger, nil, "confirm upload", err)
	}
	return photo, nil
}

// ListPhotos returns the user's photos, newest first. A photo whose URL cannot be signed is
// still listed, without DownloadURL.
func (s *progressService) ListPhotos(ctx context.Context) ([]PhotoDetails, error) {
	if s.fileStorage == nil {
		return nil, ErrStorageDisabled
	}
	photos, err := s.photos.GetAll(ctx, 0)
	if err != nil {
		return nil, fail(s.logger, nil, "list photos", err)
	}
	out := make([]PhotoDetails, 0, len(photos))
	for _, p := range photos {
		d := PhotoDetails{ProgressPhoto: p}
		url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, p.ObjectKey, storage.DefaultPresignedURLExpiry)
		if err != nil {
			s.logger.Warn("presign download failed", "id", p.ID, "error", err)
		} else {
			d.DownloadURL = url
		}
		out = append(out, d)
	}
	return out, nil
}

// DeletePhoto removes the object, then its metadata. A failure between the two leaves
// metadata pointing at a missing object; retrying the delete clears it.
func (s *progressService) DeletePhoto(ctx context.Context, id string) error {
	if s.fileStorage == nil {
		return ErrStorageDisabled
	}
	photo, err := s.photos.GetByID(ctx, id)
	if err != nil {
		return fail(s.logger, nil, "delete photo", err)
	}
	if photo == nil {
		return ErrPhotoNotFound
	}
	if err := s.fileStorage.DeleteObject(ctx, photo.ObjectKey); err != nil {
		return fail(s.logger, nil, "delete photo", err)
	}
	if err := s.photos.Delete(ctx, id); err != nil {
		return fail(s.logger, nil, "delete photo", err)
	}
	return nil
}
