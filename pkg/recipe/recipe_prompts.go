package recipe

import (
	"smart-kitchen/pkg/llm"
	"smart-kitchen/pkg/pantry"
)

var ingredientShape = &llm.Shape{
	Name: "RecipeIngredient",
	Fields: []llm.Field{
		llm.Required("name", llm.TypeString, "ingredient name as it appears in the available list when possible"),
		llm.Required("quantity", llm.TypeNumber, "amount needed"),
		llm.Required("unit", llm.TypeString, "grams, milliliters, units or pinch"),
		llm.Optional("notes", llm.TypeString, "preparation note such as diced"),
	},
}

// RecipeShape is one generated recipe.
var RecipeShape = &llm.Shape{
	Name:        "Recipe",
	Description: "a complete recipe",
	Fields: []llm.Field{
		llm.Required("name", llm.TypeString, "recipe title"),
		llm.ListOfShape("ingredients", ingredientShape, true, "everything the recipe uses"),
		llm.ListOf("instructions", llm.TypeString, true, "ordered cooking steps"),
		llm.Required("preparation_time", llm.TypeInteger, "total minutes"),
		llm.Required("difficulty", llm.TypeString, "easy, medium or hard"),
		llm.Required("servings", llm.TypeInteger, "number of portions"),
		llm.Optional("category", llm.TypeString, "meal category such as breakfast or dinner"),
		llm.Optional("price", llm.TypeNumber, "estimated cost of ingredients"),
		llm.Object("nutrition", pantry.NutritionShape, false, "nutrition per serving"),
	},
}

const recipeSystemPrompt = "You are a creative home cook who writes practical recipes. Reply with JSON only."

var recipeGenerationTemplate = llm.NewTemplate(`Create $count different recipes that mainly use the available ingredients.
Common staples such as salt, pepper, oil and water may be assumed.
Each recipe serves $servings unless the preferences say otherwise.

<available_ingredients>
$ingredients
</available_ingredients>

<preferences>
$preferences
</preferences>

Answer with a JSON array of $count recipes. Each recipe follows this schema:

<schema>
$schema
</schema>`)

// simplifiedRecipeTemplate is used once when the model's first answer could
// not be parsed.
var simplifiedRecipeTemplate = llm.NewTemplate(`Write $count recipes using: $ingredients.
Preferences: $preferences. Each recipe serves $servings.
Reply with only a JSON array. Each element has name, ingredients (list of objects with name, quantity, unit),
instructions (list of strings), preparation_time (minutes), difficulty (easy, medium or hard) and servings.`)
