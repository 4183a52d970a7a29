package core

import (
	"context"
	"fmt"
	"time"

	"github.com/edvin/skinsight/internal/model"
	"github.com/edvin/skinsight/internal/platform"
)

const imageColumns = "id, filename, content_type, file_size, storage_key, created_at, updated_at"

// ImageService persists metadata for uploaded images. The bytes themselves
// are written to object storage by the handler before Create is called.
type ImageService struct {
	db DB
}

// NewImageService creates a new ImageService.
func NewImageService(db DB) *ImageService {
	return &ImageService{db: db}
}

// Create stores image metadata and returns the persisted record.
func (s *ImageService) Create(ctx context.Context, filename, contentType string, fileSize int64, storageKey string) (*model.Image, error) {
	img := &model.Image{
		ID:          platform.NewID(),
		Filename:    filename,
		ContentType: contentType,
		FileSize:    fileSize,
		StorageKey:  storageKey,
		CreatedAt:   time.Now().UTC(),
	}
	img.UpdatedAt = img.CreatedAt

	_, err := s.db.Exec(ctx,
		`INSERT INTO images (id, filename, content_type, file_size, storage_key, is_deleted, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, FALSE, $6, $7)`,
		img.ID, img.Filename, img.ContentType, img.FileSize, img.StorageKey, img.CreatedAt, img.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert image: %w", err)
	}
	return img, nil
}

// GetByID retrieves image metadata by ID; soft-deleted images are invisible.
func (s *ImageService) GetByID(ctx context.Context, id string) (*model.Image, error) {
	var img model.Image
	err := s.db.QueryRow(ctx,
		`SELECT `+imageColumns+` FROM images WHERE id = $1 AND is_deleted = FALSE`, id,
	).Scan(&img.ID, &img.Filename, &img.ContentType, &img.FileSize, &img.StorageKey, &img.CreatedAt, &img.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("image %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get image %s: %w", id, err)
	}
	return &img, nil
}
