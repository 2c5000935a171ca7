package sous_test

import (
	"testing"

	"github.com/fwojciec/sous"
	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	t.Run("no recipes", func(t *testing.T) {
		t.Parallel()
		p := sous.BuildPrompt("tofu curry", nil)
		assert.Contains(t, p, `User's question: "tofu curry"`)
		assert.Contains(t, p, "couldn't find any recipes")
		assert.NotContains(t, p, "Recipe:")
	})

	t.Run("includes recipe details", func(t *testing.T) {
		t.Parallel()
		p := sous.BuildPrompt("pancakes", []sous.Recipe{{
			Title:       "Pancakes",
			Ingredients: []string{"1 egg", "1 cup milk"},
			Directions:  []string{"Whisk.", "Fry."},
		}})
		assert.Contains(t, p, "I found these recipes that might help:")
		assert.Contains(t, p, "Recipe: Pancakes\nIngredients: 1 egg, 1 cup milk\nDirections: Whisk. Fry.")
	})

	t.Run("fills missing fields", func(t *testing.T) {
		t.Parallel()
		p := sous.BuildPrompt("x", []sous.Recipe{{}})
		assert.Contains(t, p, "Recipe: Untitled")
		assert.Contains(t, p, "Directions: No directions available")
	})

	t.Run("limits recipes", func(t *testing.T) {
		t.Parallel()
		p := sous.BuildPrompt("x", []sous.Recipe{
			{Title: "A"}, {Title: "B"}, {Title: "C"}, {Title: "D"}, {Title: "E"},
		})
		assert.Contains(t, p, "Recipe: C")
		assert.NotContains(t, p, "Recipe: D")
		assert.NotContains(t, p, "Recipe: E")
	})
}
