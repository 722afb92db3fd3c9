package domain

import (
	"errors"
	"time"
)

const (
	DefaultRecipeCount = 3
	MaxRecipeCount     = 10
)

var (
	MessageSuccessGenerateRecipes = "recipes generated successfully"
	MessageSuccessGetRecipes      = "recipes retrieved successfully"
	MessageSuccessGetRecipeDetail = "recipe retrieved successfully"
	MessageSuccessSaveRecipe      = "recipe saved successfully"
	MessageSuccessUnsaveRecipe    = "recipe removed from saved"
	MessageSuccessDeleteRecipe    = "recipe deleted successfully"
	MessageSuccessCookRecipe      = "recipe cooked, pantry updated"
	MessageSuccessRateRecipe      = "recipe rated successfully"

	MessageFailedGenerateRecipes = "failed to generate recipes"
	MessageFailedGetRecipes      = "failed to retrieve recipes"
	MessageFailedGetRecipeDetail = "failed to retrieve recipe"
	MessageFailedSaveRecipe      = "failed to save recipe"
	MessageFailedUnsaveRecipe    = "failed to unsave recipe"
	MessageFailedDeleteRecipe    = "failed to delete recipe"
	MessageFailedCookRecipe      = "failed to cook recipe"
	MessageFailedRateRecipe      = "failed to rate recipe"

	ErrRecipeNotFound  = errors.New("recipe not found")
	ErrNoIngredients   = errors.New("no ingredients available for recipe generation")
	ErrNoRecipesReturn = errors.New("model returned no recipes")
	ErrInvalidRating   = errors.New("ratings must be between 0 and 5")
)

type (
	GenerateRecipesRequest struct {
		Ingredients []string `json:"ingredients" validate:"omitempty,max=100,dive,required,max=200"`
		Preferences string   `json:"preferences" validate:"omitempty,max=1000"`
		Count       int      `json:"count" validate:"omitempty,min=1,max=10"`
	}

	RecipeIngredientRequest struct {
		Name     string  `json:"name" validate:"required,max=200"`
		Quantity float64 `json:"quantity" validate:"gte=0"`
		Unit     string  `json:"unit" validate:"omitempty,max=50"`
		Notes    string  `json:"notes" validate:"omitempty,max=500"`
	}

	SaveRecipeRequest struct {
		Name            string                    `json:"name" validate:"required,max=200"`
		Ingredients     []RecipeIngredientRequest `json:"ingredients" validate:"required,min=1,dive"`
		Instructions    []string                  `json:"instructions" validate:"required,min=1"`
		PreparationTime int                       `json:"preparation_time" validate:"gte=0"`
		Difficulty      string                    `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
		Servings        int                       `json:"servings" validate:"gte=0"`
		Category        string                    `json:"category" validate:"omitempty,max=100"`
		Price           float64                   `json:"price" validate:"gte=0"`
	}

	// CookRecipeRequest maps pantry item ids to the amount used.
	CookRecipeRequest struct {
		IngredientsUsed map[string]float64 `json:"ingredients_used" validate:"required,min=1,dive,keys,uuid,endkeys,gt=0"`
	}

	RateRecipeRequest struct {
		Rating           *float64 `json:"rating" validate:"required,gte=0,lte=5"`
		DifficultyRating *float64 `json:"difficulty_rating" validate:"omitempty,gte=0,lte=5"`
		WouldMakeAgain   *bool    `json:"would_make_again"`
		Review           *string  `json:"review" validate:"omitempty,max=5000"`
	}

	RecipeRatingResponse struct {
		Rating           float64   `json:"rating"`
		DifficultyRating *float64  `json:"difficulty_rating,omitempty"`
		WouldMakeAgain   *bool     `json:"would_make_again,omitempty"`
		Review           string    `json:"review,omitempty"`
		RatedAt          time.Time `json:"rated_at"`
	}

	RecipeIngredientResponse struct {
		Name         string  `json:"name"`
		Quantity     float64 `json:"quantity"`
		Unit         string  `json:"unit"`
		Notes        string  `json:"notes,omitempty"`
		PantryItemID string  `json:"pantry_item_id,omitempty"`
	}

	RecipeResponse struct {
		ID              string                     `json:"id"`
		Name            string                     `json:"name"`
		IsSaved         bool                       `json:"is_saved"`
		RecipeType      string                     `json:"recipe_type"`
		Ingredients     []RecipeIngredientResponse `json:"ingredients"`
		Instructions    []string                   `json:"instructions"`
		PreparationTime int                        `json:"preparation_time"`
		Difficulty      string                     `json:"difficulty"`
		Servings        int                        `json:"servings"`
		Category        string                     `json:"category"`
		Price           float64                    `json:"price"`
		Nutrition       NutritionResponse          `json:"nutrition"`
		Rating          *RecipeRatingResponse      `json:"rating,omitempty"`
		CreatedAt       time.Time                  `json:"created_at"`
	}

	CookRecipeResponse struct {
		RecipeID string                      `json:"recipe_id"`
		Consumed []ConsumePantryItemResponse `json:"consumed"`
	}
)
