package recipe

import (
	"context"
	"time"

	"smart-kitchen/entities"

	"gorm.io/gorm"
)

type (
	RecipeRepository interface {
		CreateRecipe(ctx context.Context, recipe *entities.Recipe) error
		// CreateRecipes inserts all recipes in one statement or none of them.
		CreateRecipes(ctx context.Context, recipes []*entities.Recipe) error
		GetRecipeByID(ctx context.Context, id, userID string) (*entities.Recipe, error)
		GetRecipes(ctx context.Context, userID string, savedOnly bool, page, limit int) ([]*entities.Recipe, int64, error)
		UpdateRecipe(ctx context.Context, recipe *entities.Recipe) error
		DeleteRecipe(ctx context.Context, id, userID string) error
		// DeleteUnsavedBefore removes generated recipes nobody saved, for all users.
		DeleteUnsavedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	}

	recipeRepository struct {
		db *gorm.DB
	}
)

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) CreateRecipe(ctx context.Context, recipe *entities.Recipe) error {
	return r.db.WithContext(ctx).Create(recipe).Error
}

func (r *recipeRepository) CreateRecipes(ctx context.Context, recipes []*entities.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&recipes).Error
}

func (r *recipeRepository) GetRecipeByID(ctx context.Context, id, userID string) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) GetRecipes(ctx context.Context, userID string, savedOnly bool, page, limit int) ([]*entities.Recipe, int64, error) {
	var recipes []*entities.Recipe
	var count int64

	query := r.db.WithContext(ctx).Model(&entities.Recipe{}).Where("user_id = ?", userID)
	if savedOnly {
		query = query.Where("is_saved = ?", true)
	}
	query = query.Session(&gorm.Session{})

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&recipes).Error; err != nil {
		return nil, 0, err
	}
	return recipes, count, nil
}

func (r *recipeRepository) UpdateRecipe(ctx context.Context, recipe *entities.Recipe) error {
	res := r.db.WithContext(ctx).
		Model(recipe).
		Where("user_id = ?", recipe.UserID).
		Select("is_saved", "data", "rating", "difficulty_rating", "would_make_again", "review", "rated_at", "updated_at").
		Updates(recipe)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *recipeRepository) DeleteRecipe(ctx context.Context, id, userID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&entities.Recipe{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *recipeRepository) DeleteUnsavedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("is_saved = ? AND created_at < ?", false, cutoff).
		Delete(&entities.Recipe{})
	return res.RowsAffected, res.Error
}
