package api

import (
	"fmt"
	"net/http"

	"github.com/Lagergrenk/grindmode-sub001/internal/domain"
	"github.com/Lagergrenk/grindmode-sub001/internal/session"
	"github.com/gin-gonic/gin"
)

type ProgressHandler struct {
	sessions *session.Manager
}

func NewProgressHandler(sessions *session.Manager) *ProgressHandler {
	return &ProgressHandler{sessions: sessions}
}

type UploadURLRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmUploadRequest struct {
	ObjectKey   string `json:"objectKey" binding:"required"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType" binding:"required"`
	Size        int64  `json:"size" binding:"gte=0"`
	Caption     string `json:"caption"`
}

// RequestUploadURL godoc
// @Summary Get a presigned URL for uploading a progress photo
// @Description The client PUTs the image to uploadUrl, then confirms with the returned objectKey.
// @Tags Progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UploadURLRequest true "File details"
// @Success 200 {object} service.UploadURLResponse
// @Router /progress/photos/upload-url [post]
func (h *ProgressHandler) RequestUploadURL(c *gin.Context) {
	s, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}
	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	resp, err := s.Progress.RequestUploadURL(c.Request.Context(), req.FileName, req.ContentType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProgressHandler) ConfirmUpload(c *gin.Context) {
	s, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}
	var req ConfirmUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	photo, err := s.Progress.ConfirmUpload(c.Request.Context(), &domain.ProgressPhoto{
		ObjectKey:   req.ObjectKey,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Size:        req.Size,
		Caption:     req.Caption,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, photo)
}

func (h *ProgressHandler) ListPhotos(c *gin.Context) {
	s, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}
	photos, err := s.Progress.ListPhotos(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, photos)
}

func (h *ProgressHandler) DeletePhoto(c *gin.Context) {
	s, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}
	if err := s.Progress.DeletePhoto(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
