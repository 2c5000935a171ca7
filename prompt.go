package sous

import (
	"fmt"
	"strings"
)

// PromptRecipes is the number of recipes included in a prompt.
const PromptRecipes = 3

// BuildPrompt builds the generation prompt for a user message and the
// recipes found for it. Only the first PromptRecipes recipes are included.
func BuildPrompt(message string, recipes []Recipe) string {
	if len(recipes) == 0 {
		return fmt.Sprintf(`You are a friendly recipe recommendation chatbot.

User's question: %q

Unfortunately, I couldn't find any recipes in my database that match this request. Please:
1. Suggest they try searching with different ingredients or dish names
2. Offer to help with general cooking questions
3. Be friendly and helpful

Keep your response concise and encouraging.`, message)
	}

	if len(recipes) > PromptRecipes {
		recipes = recipes[:PromptRecipes]
	}
	blocks := make([]string, len(recipes))
	for i, r := range recipes {
		blocks[i] = formatRecipe(r)
	}
	return fmt.Sprintf(`You are a friendly recipe recommendation chatbot.

User's question: %q

I found these recipes that might help:

%s

Please provide a helpful, conversational response. If a recipe matches their request, recommend it and give a brief summary of how to make it. Be friendly and encouraging!`,
		message, strings.Join(blocks, "\n\n"))
}

func formatRecipe(r Recipe) string {
	title := r.Title
	if title == "" {
		title = "Untitled"
	}
	directions := "No directions available"
	if len(r.Directions) > 0 {
		directions = strings.Join(r.Directions, " ")
	}
	return fmt.Sprintf("Recipe: %s\nIngredients: %s\nDirections: %s",
		title, strings.Join(r.Ingredients, ", "), directions)
}
