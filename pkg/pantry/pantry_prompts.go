package pantry

import "smart-kitchen/pkg/llm"

var NutritionShape = &llm.Shape{
	Name:        "Nutrition",
	Description: "nutrition per standard unit",
	Fields: []llm.Field{
		llm.Required("standard_unit", llm.TypeString, "unit the values below refer to, e.g. 100g, 1 cup, 1 egg"),
		llm.Required("calories", llm.TypeNumber, "kcal per standard unit"),
		llm.Optional("protein", llm.TypeNumber, "grams of protein per standard unit"),
		llm.Optional("carbs", llm.TypeNumber, "grams of carbohydrate per standard unit"),
		llm.Optional("fat", llm.TypeNumber, "grams of fat per standard unit"),
		llm.Optional("fiber", llm.TypeNumber, "grams of fiber per standard unit"),
	},
}

// EnrichmentShape is the model's answer when standardizing one pantry item.
var EnrichmentShape = &llm.Shape{
	Name:        "PantryEnrichment",
	Description: "standardized pantry item",
	Fields: []llm.Field{
		llm.Required("standard_name", llm.TypeString, "common grocery name, singular, lower case"),
		llm.Required("category", llm.TypeString, "one of produce, dairy, meat, seafood, bakery, pantry, frozen, beverages, other"),
		llm.Optional("notes", llm.TypeString, "short storage tip"),
		llm.Optional("expiry_days", llm.TypeInteger, "typical days until spoiled from today when stored properly"),
		llm.Object("nutrition", NutritionShape, true, "estimated nutrition"),
	},
}

// ReceiptItemShape is one purchased line read off a receipt.
var ReceiptItemShape = &llm.Shape{
	Name:        "ReceiptItem",
	Description: "grocery line from a receipt",
	Fields: []llm.Field{
		llm.Required("name", llm.TypeString, "readable product name without codes or abbreviations"),
		llm.Optional("price", llm.TypeNumber, "line total paid"),
		llm.Optional("quantity", llm.TypeNumber, "count or weight purchased, 1 if not printed"),
		llm.Optional("shelf_life_days", llm.TypeInteger, "typical days the item keeps after purchase"),
	},
}

const pantrySystemPrompt = "You are a kitchen assistant that standardizes grocery items. Reply with JSON only."

var ingredientAnalysisTemplate = llm.NewTemplate(`Standardize the grocery item below, which may have been typed by a user or read by OCR.
Answer with a single JSON object following this schema:

<schema>
$schema
</schema>

Today is $today.

<item>
$item
</item>

Give your best estimate for nutrition and scale every value to the standard unit you choose.`)

const receiptSystemPrompt = "You extract grocery items from receipt images. Always answer with a valid JSON array of items."

var receiptTemplate = llm.NewTemplate(`List every grocery item purchased on this receipt.
Skip taxes, totals, discounts, bags and payment lines.
Answer with a JSON array where each element follows this schema:

<schema>
$schema
</schema>`)
