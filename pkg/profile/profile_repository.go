package profile

import (
	"context"

	"smart-kitchen/entities"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type (
	ProfileRepository interface {
		// GetOrCreate returns the owner's profile, inserting one with default
		// values when none exists.
		GetOrCreate(ctx context.Context, userID uuid.UUID) (*entities.UserProfile, error)
		Update(ctx context.Context, profile *entities.UserProfile, columns ...string) error
	}

	profileRepository struct {
		db *gorm.DB
	}
)

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*entities.UserProfile, error) {
	var profile entities.UserProfile
	defaults := entities.UserProfile{
		UserID:             userID,
		DietaryPreferences: datatypes.NewJSONSlice([]string{}),
		Goals:              datatypes.NewJSONSlice([]string{}),
		DefaultServings:    entities.DefaultServings,
		CookingExperience:  entities.CookingBeginner,
	}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Attrs(defaults).
		FirstOrCreate(&profile).Error
	if err == nil {
		return &profile, nil
	}

	// a concurrent first request may have inserted the row
	var existing entities.UserProfile
	if findErr := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&existing).Error; findErr == nil {
		return &existing, nil
	}
	return nil, err
}

func (r *profileRepository) Update(ctx context.Context, profile *entities.UserProfile, columns ...string) error {
	res := r.db.WithContext(ctx).
		Model(profile).
		Where("user_id = ?", profile.UserID).
		Select(append(columns, "updated_at")).
		Updates(profile)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
