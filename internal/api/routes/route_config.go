package routes

import (
	"smart-kitchen/internal/api/handlers"
	"smart-kitchen/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App             *fiber.App
	PantryHandler   handlers.PantryHandler
	RecipeHandler   handlers.RecipeHandler
	FeedbackHandler handlers.FeedbackHandler
	ProfileHandler  handlers.ProfileHandler
	Middleware      middleware.Middleware
}

func (c *Config) Setup() {
	c.GuestRoute()
	c.Pantry()
	c.Recipes()
	c.Feedback()
	c.Profile()
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
}

func (c *Config) Pantry() {
	pantry := c.App.Group("/api/v1/pantry", c.Middleware.OwnerMiddleware())

	pantry.Post("", c.PantryHandler.AddItem)
	pantry.Post("/bulk", c.PantryHandler.AddItems)
	pantry.Get("", c.PantryHandler.GetItems)
	pantry.Delete("", c.PantryHandler.ClearPantry)

	pantry.Post("/receipt", c.PantryHandler.ScanReceipt)
	pantry.Post("/receipt/confirm", c.PantryHandler.ConfirmReceipt)

	pantry.Get("/:id", c.PantryHandler.GetItem)
	pantry.Put("/:id", c.PantryHandler.UpdateItem)
	pantry.Delete("/:id", c.PantryHandler.DeleteItem)
	pantry.Post("/:id/consume", c.PantryHandler.ConsumeItem)
}

func (c *Config) Recipes() {
	recipes := c.App.Group("/api/v1/recipes", c.Middleware.OwnerMiddleware())

	recipes.Post("/generate", c.RecipeHandler.GenerateRecipes)
	recipes.Post("", c.RecipeHandler.SaveRecipe)
	recipes.Get("", c.RecipeHandler.GetRecipes)
	recipes.Get("/:id", c.RecipeHandler.GetRecipeDetail)
	recipes.Delete("/:id", c.RecipeHandler.DeleteRecipe)
	recipes.Post("/:id/save", c.RecipeHandler.BookmarkRecipe)
	recipes.Delete("/:id/save", c.RecipeHandler.RemoveBookmark)
	recipes.Post("/:id/cook", c.RecipeHandler.CookRecipe)
	recipes.Post("/:id/rate", c.RecipeHandler.RateRecipe)
}

func (c *Config) Feedback() {
	feedback := c.App.Group("/api/v1/feedback", c.Middleware.OwnerMiddleware())

	feedback.Post("", c.FeedbackHandler.SubmitFeedback)
	feedback.Get("", c.FeedbackHandler.GetFeedback)
}

func (c *Config) Profile() {
	profile := c.App.Group("/api/v1/profile", c.Middleware.OwnerMiddleware())

	profile.Get("", c.ProfileHandler.GetProfile)
	profile.Patch("", c.ProfileHandler.UpdateProfile)
}
