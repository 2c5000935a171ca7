package goldmark_test

import (
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/sous"
	"github.com/fwojciec/sous/goldmark"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

// plainLines strips styling and trailing padding from each rendered line.
func plainLines(s string) []string {
	lines := strings.Split(stripANSI(s), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return lines
}

func TestMain(m *testing.M) {
	// Force ANSI output so styled elements produce escape codes.
	lipgloss.SetColorProfile(termenv.ANSI)
	os.Exit(m.Run())
}

func TestRender(t *testing.T) {
	t.Parallel()

	theme := sous.DefaultTheme()

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", goldmark.Render("", 80, theme))
	})

	t.Run("plain paragraph", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, []string{"Preheat the oven."}, plainLines(goldmark.Render("Preheat the oven.", 80, theme)))
	})

	t.Run("heading is styled", func(t *testing.T) {
		t.Parallel()
		heading := goldmark.Render("## Ingredients", 80, theme)
		paragraph := goldmark.Render("Ingredients", 80, theme)
		assert.Equal(t, []string{"Ingredients"}, plainLines(heading))
		assert.NotEqual(t, heading, paragraph)
	})

	t.Run("emphasis and code keep their text", func(t *testing.T) {
		t.Parallel()
		got := goldmark.Render("Use **cold** butter, *not* `margarine`.", 80, theme)
		assert.Equal(t, "Use cold butter, not margarine.", plainLines(got)[0])
		assert.NotEqual(t, stripANSI(got), got)
	})

	t.Run("ordered steps keep their numbers", func(t *testing.T) {
		t.Parallel()
		got := goldmark.Render("3. Whisk eggs\n4. Fold in flour", 80, theme)
		assert.Equal(t, []string{"3. Whisk eggs", "4. Fold in flour"}, plainLines(got))
	})

	t.Run("bullet list", func(t *testing.T) {
		t.Parallel()
		got := goldmark.Render("- 2 eggs\n- 1 cup milk", 80, theme)
		assert.Equal(t, []string{"• 2 eggs", "• 1 cup milk"}, plainLines(got))
	})

	t.Run("nested list is indented", func(t *testing.T) {
		t.Parallel()
		got := plainLines(goldmark.Render("- Sauce\n  - tomatoes\n  - basil", 80, theme))
		require.Len(t, got, 3)
		assert.Equal(t, "• Sauce", got[0])
		assert.Equal(t, "  • tomatoes", got[1])
		assert.Equal(t, "  • basil", got[2])
	})

	t.Run("list item wraps under its text", func(t *testing.T) {
		t.Parallel()
		src := "- simmer the stock gently for forty minutes until reduced by half"
		lines := plainLines(goldmark.Render(src, 30, theme))
		require.Greater(t, len(lines), 1)
		assert.True(t, strings.HasPrefix(lines[0], "• "))
		for _, l := range lines[1:] {
			assert.True(t, strings.HasPrefix(l, "  "), "continuation line should hang: %q", l)
		}
	})

	t.Run("paragraph wraps to width", func(t *testing.T) {
		t.Parallel()
		src := "Combine the flour, sugar, baking powder and salt in a large bowl before adding the wet ingredients."
		for _, l := range plainLines(goldmark.Render(src, 30, theme)) {
			assert.LessOrEqual(t, len(l), 30)
		}
	})

	t.Run("blocks are separated by a blank line", func(t *testing.T) {
		t.Parallel()
		got := plainLines(goldmark.Render("# Pancakes\n\nEasy and quick.", 80, theme))
		assert.Equal(t, []string{"Pancakes", "", "Easy and quick."}, got)
	})

	t.Run("code block keeps lines", func(t *testing.T) {
		t.Parallel()
		got := plainLines(goldmark.Render("```text\n350F for 25 min\nrest 5 min\n```", 10, theme))
		assert.Equal(t, []string{"text", "│ 350F for 25 min", "│ rest 5 min"}, got)
	})

	t.Run("blockquote has a gutter", func(t *testing.T) {
		t.Parallel()
		got := plainLines(goldmark.Render("> Chef's tip: salt the water.", 80, theme))
		assert.Equal(t, []string{"┃ Chef's tip: salt the water."}, got)
	})

	t.Run("thematic break spans the width", func(t *testing.T) {
		t.Parallel()
		got := plainLines(goldmark.Render("above\n\n---\n\nbelow", 12, theme))
		assert.Equal(t, []string{"above", "", strings.Repeat("─", 12), "", "below"}, got)
	})

	t.Run("link shows url", func(t *testing.T) {
		t.Parallel()
		got := goldmark.Render("[RecipeNLG](https://recipenlg.cs.put.poznan.pl)", 80, theme)
		assert.Equal(t, "RecipeNLG (https://recipenlg.cs.put.poznan.pl)", plainLines(got)[0])
	})

	t.Run("unterminated markdown mid-stream", func(t *testing.T) {
		t.Parallel()
		got := goldmark.Render("1. Boil **pasta", 80, theme)
		assert.Equal(t, []string{"1. Boil **pasta"}, plainLines(got))
	})

	t.Run("width zero defaults to 80", func(t *testing.T) {
		t.Parallel()
		src := strings.Repeat("salt ", 15)
		assert.Len(t, plainLines(goldmark.Render(src, 0, theme)), 1)
	})
}
