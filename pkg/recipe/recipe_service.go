package recipe

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"smart-kitchen/domain"
	"smart-kitchen/entities"
	"smart-kitchen/pkg/llm"
	"smart-kitchen/pkg/pantry"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type (
	RecipeService interface {
		GenerateRecipes(ctx context.Context, req domain.GenerateRecipesRequest, userID string) ([]domain.RecipeResponse, error)
		SaveRecipe(ctx context.Context, req domain.SaveRecipeRequest, userID string) (domain.RecipeResponse, error)
		MarkSaved(ctx context.Context, id string, saved bool, userID string) (domain.RecipeResponse, error)
		GetRecipes(ctx context.Context, userID string, savedOnly bool, page, limit int) ([]domain.RecipeResponse, int64, error)
		GetRecipe(ctx context.Context, id string, userID string) (domain.RecipeResponse, error)
		DeleteRecipe(ctx context.Context, id string, userID string) error
		CookRecipe(ctx context.Context, id string, req domain.CookRecipeRequest, userID string) (domain.CookRecipeResponse, error)
		RateRecipe(ctx context.Context, id string, req domain.RateRecipeRequest, userID string) (domain.RecipeResponse, error)
		CleanupOldRecipes(ctx context.Context, keepDays int) (int64, error)
	}

	Options struct {
		CacheResponses bool
	}

	// ProfileReader supplies the owner's dietary preferences and serving size.
	ProfileReader interface {
		GetProfile(ctx context.Context, userID string) (domain.ProfileResponse, error)
	}

	recipeService struct {
		recipeRepository RecipeRepository
		pantryRepository pantry.PantryRepository
		profiles         ProfileReader
		generator        llm.Service
		opts             Options
		now              func() time.Time
	}
)

// NewRecipeService builds the service. profiles may be nil, in which case
// generation uses only the request preferences.
func NewRecipeService(recipeRepository RecipeRepository, pantryRepository pantry.PantryRepository, profiles ProfileReader, generator llm.Service, opts Options) RecipeService {
	return &recipeService{
		recipeRepository: recipeRepository,
		pantryRepository: pantryRepository,
		profiles:         profiles,
		generator:        generator,
		opts:             opts,
		now:              time.Now,
	}
}

func (s *recipeService) GenerateRecipes(ctx context.Context, req domain.GenerateRecipesRequest, userID string) ([]domain.RecipeResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	count := req.Count
	if count <= 0 {
		count = domain.DefaultRecipeCount
	}
	if count > domain.MaxRecipeCount {
		count = domain.MaxRecipeCount
	}

	ingredients := cleanNames(req.Ingredients)
	if len(ingredients) == 0 {
		items, err := s.pantryRepository.ListAll(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			ingredients = append(ingredients, item.Name)
		}
		ingredients = cleanNames(ingredients)
	}
	if len(ingredients) == 0 {
		return nil, domain.ErrNoIngredients
	}

	preferences, servings := s.preferences(ctx, req.Preferences, userID)

	vars := map[string]string{
		"count":       strconv.Itoa(count),
		"ingredients": "- " + strings.Join(ingredients, "\n- "),
		"preferences": preferences,
		"servings":    strconv.Itoa(servings),
	}
	request := llm.Request{
		Template: recipeGenerationTemplate,
		Vars:     vars,
		System:   recipeSystemPrompt,
		Shape:    RecipeShape,
		List:     true,
		OwnerID:  &userUUID,
		UseCache: s.opts.CacheResponses,
	}

	var generated []entities.RecipeData
	err = s.generator.Generate(ctx, request, &generated)
	var extractErr *llm.ExtractionError
	if errors.As(err, &extractErr) {
		log.Warnw("recipe output unreadable, retrying with simplified prompt", "user_id", userID, "error", err)
		request.Template = simplifiedRecipeTemplate
		request.Vars = map[string]string{
			"count":       vars["count"],
			"ingredients": strings.Join(ingredients, ", "),
			"preferences": preferences,
			"servings":    vars["servings"],
		}
		generated = nil
		err = s.generator.Generate(ctx, request, &generated)
	}
	if err != nil {
		return nil, err
	}
	if len(generated) == 0 {
		return nil, domain.ErrNoRecipesReturn
	}
	if len(generated) > count {
		generated = generated[:count]
	}

	recipes := make([]*entities.Recipe, 0, len(generated))
	for _, data := range generated {
		recipes = append(recipes, &entities.Recipe{
			ID:         uuid.New(),
			UserID:     userUUID,
			IsSaved:    false,
			RecipeType: entities.RecipeTypeGenerated,
			Data:       datatypes.NewJSONType(normalizeRecipe(data)),
		})
	}

	if err := s.linkIngredients(ctx, recipes, userID); err != nil {
		log.Warnw("ingredient linking failed", "user_id", userID, "error", err)
	}
	if err := s.recipeRepository.CreateRecipes(ctx, recipes); err != nil {
		return nil, err
	}

	log.Infow("recipes generated", "user_id", userID, "count", len(recipes))
	res := make([]domain.RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		res = append(res, toResponse(recipe))
	}
	return res, nil
}

// preferences merges the request text with the owner's profile. A profile
// that cannot be loaded is logged and skipped.
func (s *recipeService) preferences(ctx context.Context, requested, userID string) (string, int) {
	var parts []string
	if requested = strings.TrimSpace(requested); requested != "" {
		parts = append(parts, requested)
	}
	servings := entities.DefaultServings

	if s.profiles != nil {
		profile, err := s.profiles.GetProfile(ctx, userID)
		if err != nil {
			log.Warnw("profile unavailable for recipe generation", "user_id", userID, "error", err)
		} else {
			if len(profile.DietaryPreferences) > 0 {
				parts = append(parts, "dietary: "+strings.Join(profile.DietaryPreferences, ", "))
			}
			if len(profile.Goals) > 0 {
				parts = append(parts, "goals: "+strings.Join(profile.Goals, ", "))
			}
			if profile.CookingExperience != "" {
				parts = append(parts, "cooking experience: "+profile.CookingExperience)
			}
			if profile.DefaultServings > 0 {
				servings = profile.DefaultServings
			}
		}
	}

	if len(parts) == 0 {
		return "none", servings
	}
	return strings.Join(parts, "; "), servings
}

// linkIngredients attaches pantry item ids to ingredients of recipes that are
// not stored yet. Names must match a pantry item exactly, ignoring case.
func (s *recipeService) linkIngredients(ctx context.Context, recipes []*entities.Recipe, userID string) error {
	items, err := s.pantryRepository.ListAll(ctx, userID)
	if err != nil {
		return err
	}
	index := PantryIndex(items)

	for _, recipe := range recipes {
		data := recipe.Data.Data()
		if LinkIngredients(&data, index) {
			recipe.Data = datatypes.NewJSONType(data)
		}
	}
	return nil
}

// PantryIndex maps lower-cased pantry item names to ids. When two items share
// a name the first one listed wins.
func PantryIndex(items []*entities.PantryItem) map[string]uuid.UUID {
	index := make(map[string]uuid.UUID, len(items))
	for _, item := range items {
		key := matchKey(item.Name)
		if key == "" {
			continue
		}
		if _, ok := index[key]; !ok {
			index[key] = item.ID
		}
	}
	return index
}

// LinkIngredients sets PantryItemID on every ingredient whose name matches an
// index entry and reports whether anything was linked. There is no fuzzy or
// plural matching: "Chicken Breasts" does not match "chicken breast".
func LinkIngredients(data *entities.RecipeData, index map[string]uuid.UUID) bool {
	linked := false
	for i := range data.Ingredients {
		id, ok := index[matchKey(data.Ingredients[i].Name)]
		if !ok {
			continue
		}
		linkedID := id
		data.Ingredients[i].PantryItemID = &linkedID
		linked = true
	}
	return linked
}

func matchKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (s *recipeService) SaveRecipe(ctx context.Context, req domain.SaveRecipeRequest, userID string) (domain.RecipeResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.RecipeResponse{}, domain.ErrParseUUID
	}

	data := entities.RecipeData{
		Name:            strings.TrimSpace(req.Name),
		Instructions:    req.Instructions,
		PreparationTime: req.PreparationTime,
		Difficulty:      req.Difficulty,
		Servings:        req.Servings,
		Category:        req.Category,
		Price:           req.Price,
	}
	for _, ing := range req.Ingredients {
		data.Ingredients = append(data.Ingredients, entities.RecipeIngredient{
			Name:     strings.TrimSpace(ing.Name),
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
			Notes:    ing.Notes,
		})
	}

	recipe := &entities.Recipe{
		ID:         uuid.New(),
		UserID:     userUUID,
		IsSaved:    true,
		RecipeType: entities.RecipeTypeManual,
		Data:       datatypes.NewJSONType(normalizeRecipe(data)),
	}
	if err := s.linkIngredients(ctx, []*entities.Recipe{recipe}, userID); err != nil {
		log.Warnw("ingredient linking failed", "user_id", userID, "recipe_id", recipe.ID, "error", err)
	}
	if err := s.recipeRepository.CreateRecipe(ctx, recipe); err != nil {
		return domain.RecipeResponse{}, err
	}
	return toResponse(recipe), nil
}

func (s *recipeService) MarkSaved(ctx context.Context, id string, saved bool, userID string) (domain.RecipeResponse, error) {
	recipe, err := s.getRecipe(ctx, id, userID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	recipe.IsSaved = saved
	if err := s.recipeRepository.UpdateRecipe(ctx, recipe); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}
	return toResponse(recipe), nil
}

func (s *recipeService) GetRecipes(ctx context.Context, userID string, savedOnly bool, page, limit int) ([]domain.RecipeResponse, int64, error) {
	recipes, count, err := s.recipeRepository.GetRecipes(ctx, userID, savedOnly, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]domain.RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		res = append(res, toResponse(recipe))
	}
	return res, count, nil
}

func (s *recipeService) GetRecipe(ctx context.Context, id string, userID string) (domain.RecipeResponse, error) {
	recipe, err := s.getRecipe(ctx, id, userID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	return toResponse(recipe), nil
}

func (s *recipeService) DeleteRecipe(ctx context.Context, id string, userID string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrParseUUID
	}
	if err := s.recipeRepository.DeleteRecipe(ctx, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}
	return nil
}

// CookRecipe draws the used amounts from the pantry in one transaction. If any
// amount exceeds what is stored nothing is consumed.
func (s *recipeService) CookRecipe(ctx context.Context, id string, req domain.CookRecipeRequest, userID string) (domain.CookRecipeResponse, error) {
	recipe, err := s.getRecipe(ctx, id, userID)
	if err != nil {
		return domain.CookRecipeResponse{}, err
	}

	amounts := make(map[uuid.UUID]float64, len(req.IngredientsUsed))
	for rawID, amount := range req.IngredientsUsed {
		itemID, err := uuid.Parse(rawID)
		if err != nil {
			return domain.CookRecipeResponse{}, domain.ErrParseUUID
		}
		amounts[itemID] += amount
	}

	var consumed []domain.ConsumePantryItemResponse
	err = s.pantryRepository.WithTx(ctx, func(repo pantry.PantryRepository) error {
		var txErr error
		consumed, txErr = pantry.Consume(ctx, repo, userID, amounts)
		return txErr
	})
	if err != nil {
		return domain.CookRecipeResponse{}, err
	}

	log.Infow("recipe cooked", "user_id", userID, "recipe_id", recipe.ID, "items", len(consumed))
	return domain.CookRecipeResponse{RecipeID: recipe.ID.String(), Consumed: consumed}, nil
}

// RateRecipe replaces any earlier rating of the recipe.
func (s *recipeService) RateRecipe(ctx context.Context, id string, req domain.RateRecipeRequest, userID string) (domain.RecipeResponse, error) {
	if req.Rating == nil || !validRating(*req.Rating) {
		return domain.RecipeResponse{}, domain.ErrInvalidRating
	}
	if req.DifficultyRating != nil && !validRating(*req.DifficultyRating) {
		return domain.RecipeResponse{}, domain.ErrInvalidRating
	}

	recipe, err := s.getRecipe(ctx, id, userID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	ratedAt := s.now()
	recipe.Rating = req.Rating
	recipe.DifficultyRating = req.DifficultyRating
	recipe.WouldMakeAgain = req.WouldMakeAgain
	recipe.Review = nil
	if req.Review != nil {
		if review := strings.TrimSpace(*req.Review); review != "" {
			recipe.Review = &review
		}
	}
	recipe.RatedAt = &ratedAt

	if err := s.recipeRepository.UpdateRecipe(ctx, recipe); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}
	log.Infow("recipe rated", "user_id", userID, "recipe_id", recipe.ID, "rating", *recipe.Rating)
	return toResponse(recipe), nil
}

func validRating(v float64) bool {
	return v >= 0 && v <= 5
}

func (s *recipeService) CleanupOldRecipes(ctx context.Context, keepDays int) (int64, error) {
	if keepDays <= 0 {
		return 0, fmt.Errorf("keepDays must be positive, got %d", keepDays)
	}
	cutoff := s.now().AddDate(0, 0, -keepDays)
	return s.recipeRepository.DeleteUnsavedBefore(ctx, cutoff)
}

func (s *recipeService) getRecipe(ctx context.Context, id, userID string) (*entities.Recipe, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrParseUUID
	}
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, err
	}
	return recipe, nil
}

func normalizeRecipe(data entities.RecipeData) entities.RecipeData {
	data.Name = strings.TrimSpace(data.Name)
	data.Difficulty = strings.ToLower(strings.TrimSpace(data.Difficulty))
	if data.Servings <= 0 {
		data.Servings = 1
	}
	for i := range data.Ingredients {
		data.Ingredients[i].PantryItemID = nil
	}
	return data
}

func cleanNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		key := strings.ToLower(n)
		if n == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}

func toResponse(recipe *entities.Recipe) domain.RecipeResponse {
	data := recipe.Data.Data()
	res := domain.RecipeResponse{
		ID:              recipe.ID.String(),
		Name:            data.Name,
		IsSaved:         recipe.IsSaved,
		RecipeType:      recipe.RecipeType,
		Instructions:    data.Instructions,
		PreparationTime: data.PreparationTime,
		Difficulty:      data.Difficulty,
		Servings:        data.Servings,
		Category:        data.Category,
		Price:           data.Price,
		Nutrition: domain.NutritionResponse{
			StandardUnit: data.Nutrition.StandardUnit,
			Calories:     data.Nutrition.Calories,
			Protein:      data.Nutrition.Protein,
			Carbs:        data.Nutrition.Carbs,
			Fat:          data.Nutrition.Fat,
			Fiber:        data.Nutrition.Fiber,
		},
		CreatedAt: recipe.CreatedAt,
	}
	if recipe.Rating != nil {
		rating := &domain.RecipeRatingResponse{
			Rating:           *recipe.Rating,
			DifficultyRating: recipe.DifficultyRating,
			WouldMakeAgain:   recipe.WouldMakeAgain,
		}
		if recipe.Review != nil {
			rating.Review = *recipe.Review
		}
		if recipe.RatedAt != nil {
			rating.RatedAt = *recipe.RatedAt
		}
		res.Rating = rating
	}
	for _, ing := range data.Ingredients {
		r := domain.RecipeIngredientResponse{
			Name:     ing.Name,
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
			Notes:    ing.Notes,
		}
		if ing.PantryItemID != nil {
			r.PantryItemID = ing.PantryItemID.String()
		}
		res.Ingredients = append(res.Ingredients, r)
	}
	return res
}
