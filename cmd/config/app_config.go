package config

import (
	"context"
	"strings"
	"time"

	"smart-kitchen/internal/api/handlers"
	"smart-kitchen/internal/api/routes"
	"smart-kitchen/internal/middleware"
	"smart-kitchen/internal/utils"
	"smart-kitchen/internal/utils/mailing"
	"smart-kitchen/internal/utils/storage"
	"smart-kitchen/pkg/content"
	"smart-kitchen/pkg/feedback"
	"smart-kitchen/pkg/llm"
	"smart-kitchen/pkg/pantry"
	"smart-kitchen/pkg/profile"
	"smart-kitchen/pkg/recipe"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// App is the wired server plus the pieces main needs for shutdown.
type App struct {
	Fiber   *fiber.App
	Janitor *Janitor
	Pantry  pantry.PantryService
}

func NewApp(ctx context.Context, cfg *utils.Config, db *gorm.DB) (*App, error) {
	log.SetLevel(parseLogLevel(cfg.LogLevel))

	validator := utils.NewValidator()
	middlewares := middleware.NewMiddleware()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: cfg.EnablePrintRoutes,
		BodyLimit:         12 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitPerSec,
		Expiration: 1 * time.Second,
	}))

	// utils
	var s3 storage.AwsS3
	if cfg.S3Enabled() {
		var err error
		s3, err = storage.NewAwsS3(ctx, storage.S3Config{
			Bucket:    cfg.AWSS3Bucket,
			Region:    cfg.AWSS3Region,
			AccessKey: cfg.AWSAccessKey,
			SecretKey: cfg.AWSSecretKey,
		})
		if err != nil {
			return nil, err
		}
	}

	var mailer mailing.Mailer
	if cfg.MailEnabled() {
		mailer = mailing.NewMailer(mailing.MailConfig{
			SMTPHost:     cfg.SMTPHost,
			SMTPPort:     cfg.SMTPPort,
			SMTPSender:   cfg.SMTPSenderName,
			SMTPEmail:    cfg.SMTPAuthEmail,
			SMTPPassword: cfg.SMTPAuthPassword,
		})
	}

	// Repository
	contentRepository := content.NewContentRepository(db)
	pantryRepository := pantry.NewPantryRepository(db)
	recipeRepository := recipe.NewRecipeRepository(db)
	profileRepository := profile.NewProfileRepository(db)

	// LLM pipeline
	var cache llm.ResponseCache = llm.NopCache{}
	if cfg.LLMCacheEnabled {
		cache = llm.NewContentCache(contentRepository, cfg.LLMCacheTTL())
	}
	generator := llm.NewService(NewLLMClient(cfg), cache)

	// Service
	pantryService := pantry.NewPantryService(pantryRepository, generator, s3, pantry.Options{
		EnrichTimeout:  cfg.LLMTimeout(),
		CacheResponses: cfg.LLMCacheEnabled,
	})
	profileService := profile.NewProfileService(profileRepository)
	recipeService := recipe.NewRecipeService(recipeRepository, pantryRepository, profileService, generator, recipe.Options{
		CacheResponses: cfg.LLMCacheEnabled,
	})
	feedbackService := feedback.NewFeedbackService(contentRepository, mailer, cfg.SupportEmail)

	// Handler
	pantryHandler := handlers.NewPantryHandler(pantryService, validator)
	recipeHandler := handlers.NewRecipeHandler(recipeService, validator)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService, validator)
	profileHandler := handlers.NewProfileHandler(profileService, validator)

	// routes
	routesConfig := routes.Config{
		App:             app,
		PantryHandler:   pantryHandler,
		RecipeHandler:   recipeHandler,
		FeedbackHandler: feedbackHandler,
		ProfileHandler:  profileHandler,
		Middleware:      middlewares,
	}
	routesConfig.Setup()

	return &App{
		Fiber:   app,
		Janitor: NewJanitor(cache, recipeService, cfg.RecipeRetentionDays, cfg.JanitorInterval()),
		Pantry:  pantryService,
	}, nil
}

// NewLLMClient builds the provider client named by LLM_PROVIDER.
func NewLLMClient(cfg *utils.Config) llm.Client {
	retry := llm.DefaultRetryPolicy()
	retry.MaxRetries = cfg.LLMMaxRetries

	if cfg.LLMProvider == "gemini" {
		return llm.NewGeminiClient(llm.GeminiConfig{
			APIKey:    cfg.GeminiAPIKey,
			Model:     cfg.GeminiModel,
			MaxTokens: cfg.LLMMaxTokens,
			Timeout:   cfg.LLMTimeout(),
			Retry:     retry,
		})
	}
	return llm.NewAnthropicClient(llm.AnthropicConfig{
		APIKey:    cfg.AnthropicAPIKey,
		Model:     cfg.AnthropicModel,
		MaxTokens: cfg.LLMMaxTokens,
		Timeout:   cfg.LLMTimeout(),
		Retry:     retry,
	})
}

func parseLogLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "trace":
		return log.LevelTrace
	case "debug":
		return log.LevelDebug
	case "warn", "warning":
		return log.LevelWarn
	case "error":
		return log.LevelError
	default:
		return log.LevelInfo
	}
}
