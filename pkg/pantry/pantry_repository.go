package pantry

import (
	"context"

	"smart-kitchen/entities"

	"gorm.io/gorm"
)

var updatableColumns = []string{
	"name", "quantity", "unit", "category", "standard_name",
	"notes", "expiry_date", "price", "nutrition", "updated_at",
}

type (
	// PantryRepository scopes every query to the owning user. A row owned by
	// another user is reported as gorm.ErrRecordNotFound.
	PantryRepository interface {
		Create(ctx context.Context, item *entities.PantryItem) error
		CreateMany(ctx context.Context, items []*entities.PantryItem) error
		GetByID(ctx context.Context, id, userID string) (*entities.PantryItem, error)
		List(ctx context.Context, userID string, page, limit int) ([]*entities.PantryItem, int64, error)
		ListAll(ctx context.Context, userID string) ([]*entities.PantryItem, error)
		Update(ctx context.Context, item *entities.PantryItem) error
		Delete(ctx context.Context, id, userID string) error
		DeleteAll(ctx context.Context, userID string) (int64, error)

		// Receipt scanning related
		CreateReceiptScan(ctx context.Context, scan *entities.ReceiptScan) error
		GetReceiptScanByID(ctx context.Context, id, userID string) (*entities.ReceiptScan, error)
		UpdateReceiptScan(ctx context.Context, scan *entities.ReceiptScan) error

		// WithTx runs fn against a repository bound to one transaction.
		WithTx(ctx context.Context, fn func(repo PantryRepository) error) error
	}

	pantryRepository struct {
		db *gorm.DB
	}
)

func NewPantryRepository(db *gorm.DB) PantryRepository {
	return &pantryRepository{db: db}
}

func (r *pantryRepository) Create(ctx context.Context, item *entities.PantryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *pantryRepository) CreateMany(ctx context.Context, items []*entities.PantryItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *pantryRepository) GetByID(ctx context.Context, id, userID string) (*entities.PantryItem, error) {
	var item entities.PantryItem
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *pantryRepository) List(ctx context.Context, userID string, page, limit int) ([]*entities.PantryItem, int64, error) {
	var items []*entities.PantryItem
	var count int64

	query := r.db.WithContext(ctx).Model(&entities.PantryItem{}).Where("user_id = ?", userID).Session(&gorm.Session{})
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, count, nil
}

func (r *pantryRepository) ListAll(ctx context.Context, userID string) ([]*entities.PantryItem, error) {
	var items []*entities.PantryItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *pantryRepository) Update(ctx context.Context, item *entities.PantryItem) error {
	res := r.db.WithContext(ctx).
		Model(item).
		Where("user_id = ?", item.UserID).
		Select(updatableColumns).
		Updates(item)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *pantryRepository) Delete(ctx context.Context, id, userID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&entities.PantryItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *pantryRepository) DeleteAll(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&entities.PantryItem{})
	return res.RowsAffected, res.Error
}

func (r *pantryRepository) CreateReceiptScan(ctx context.Context, scan *entities.ReceiptScan) error {
	return r.db.WithContext(ctx).Create(scan).Error
}

func (r *pantryRepository) GetReceiptScanByID(ctx context.Context, id, userID string) (*entities.ReceiptScan, error) {
	var scan entities.ReceiptScan
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&scan).Error; err != nil {
		return nil, err
	}
	return &scan, nil
}

func (r *pantryRepository) UpdateReceiptScan(ctx context.Context, scan *entities.ReceiptScan) error {
	return r.db.WithContext(ctx).
		Model(scan).
		Where("user_id = ?", scan.UserID).
		Select("image_url", "status", "results", "error", "updated_at").
		Updates(scan).Error
}

func (r *pantryRepository) WithTx(ctx context.Context, fn func(repo PantryRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&pantryRepository{db: tx})
	})
}
