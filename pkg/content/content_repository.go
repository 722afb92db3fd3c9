package content

import (
	"context"
	"errors"
	"time"

	"smart-kitchen/entities"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type (
	// ContentRepository stores typed user_content rows (cache entries, feedback).
	ContentRepository interface {
		Create(ctx context.Context, content *entities.UserContent) error
		// FindLatestByMetadata returns the newest row of contentType whose
		// metadata field equals value.
		FindLatestByMetadata(ctx context.Context, contentType, field, value string) (*entities.UserContent, error)
		ListByUser(ctx context.Context, userID uuid.UUID, contentType string) ([]*entities.UserContent, error)
		DeleteOlderThan(ctx context.Context, contentType string, cutoff time.Time) (int64, error)
	}

	contentRepository struct {
		db *gorm.DB
	}
)

var ErrContentNotFound = errors.New("content not found")

func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) Create(ctx context.Context, content *entities.UserContent) error {
	return r.db.WithContext(ctx).Create(content).Error
}

func (r *contentRepository) FindLatestByMetadata(ctx context.Context, contentType, field, value string) (*entities.UserContent, error) {
	var content entities.UserContent
	err := r.db.WithContext(ctx).
		Where("type = ?", contentType).
		Where(datatypes.JSONQuery("metadata").Equals(value, field)).
		Order("created_at desc").
		First(&content).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}
	return &content, nil
}

func (r *contentRepository) ListByUser(ctx context.Context, userID uuid.UUID, contentType string) ([]*entities.UserContent, error) {
	var contents []*entities.UserContent
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND type = ?", userID, contentType).
		Order("created_at desc").
		Find(&contents).Error; err != nil {
		return nil, err
	}
	return contents, nil
}

func (r *contentRepository) DeleteOlderThan(ctx context.Context, contentType string, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("type = ? AND created_at < ?", contentType, cutoff).
		Delete(&entities.UserContent{})
	return res.RowsAffected, res.Error
}
