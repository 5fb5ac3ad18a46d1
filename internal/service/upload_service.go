package service

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/portfolio-content-api/internal/config"
	"github.com/portfolio-content-api/internal/metrics"
	"github.com/portfolio-content-api/internal/models"
	"github.com/portfolio-content-api/internal/repository"
	"github.com/rs/zerolog"
)

// uploadService is the concrete implementation of UploadService
type uploadService struct {
	store        repository.AssetStore
	maxBytes     int64
	allowedTypes map[string]bool
	log          zerolog.Logger
}

func newUploadService(store repository.AssetStore, cfg config.UploadConfig, log zerolog.Logger) *uploadService {
	allowed := make(map[string]bool, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		allowed[strings.ToLower(strings.TrimSpace(t))] = true
	}
	return &uploadService{
		store:        store,
		maxBytes:     cfg.MaxBytes,
		allowedTypes: allowed,
		log:          log.With().Str("service", "upload").Logger(),
	}
}

func (s *uploadService) reject(reason, format string, args ...interface{}) error {
	metrics.UploadRejected(reason)
	return models.Validationf("upload", format, args...)
}

// Validate checks size and declared type. It never touches the network.
func (s *uploadService) Validate(file models.UploadFile) error {
	if file.Size > s.maxBytes {
		return s.reject("size", "image size must be less than %d MB", s.maxBytes>>20)
	}
	declared := baseMediaType(file.ContentType)
	if !s.allowedTypes[declared] {
		return s.reject("type", "please upload only JPEG or PNG images, got %q", file.ContentType)
	}
	return nil
}

// Upload validates file, confirms its content matches an allowed type and
// forwards it to the collection's upload folder
func (s *uploadService) Upload(ctx context.Context, collection models.Collection, file models.UploadFile) (*models.UploadResult, error) {
	if err := s.Validate(file); err != nil {
		return nil, err
	}

	// the declared type is client supplied; sniff the leading bytes too
	br := bufio.NewReaderSize(file.Content, 512)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, models.NewFailure(models.KindValidation, "upload", fmt.Errorf("failed to read file: %w", err))
	}
	if sniffed := baseMediaType(http.DetectContentType(head)); !s.allowedTypes[sniffed] {
		return nil, s.reject("content", "file content is %s, not an allowed image type", sniffed)
	}

	folder := collection.Folder()
	asset, err := s.store.Upload(ctx, io.LimitReader(br, s.maxBytes+1), file.Filename, folder)
	if err != nil {
		s.log.Error().Err(err).Str("folder", folder).Msg("Upload failed")
		return nil, wrapFailure("upload", err)
	}

	s.log.Info().Str("folder", folder).Str("public_id", asset.PublicID).Int64("size", file.Size).Msg("Image uploaded")
	return &models.UploadResult{URL: asset.SecureURL}, nil
}

func baseMediaType(ct string) string {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(ct))
	}
	return mt
}
