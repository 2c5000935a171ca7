// Package sqlite implements [sous.RecipeStore] on an embedded SQLite
// database using the pure Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/fwojciec/sous"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// maxTerms bounds how many query terms take part in ranking.
const maxTerms = 8

const schema = `
CREATE TABLE IF NOT EXISTS recipes (
	id          INTEGER PRIMARY KEY,
	title       TEXT NOT NULL,
	ingredients TEXT NOT NULL DEFAULT '[]',
	directions  TEXT NOT NULL DEFAULT '[]',
	ner         TEXT NOT NULL DEFAULT '[]',
	search      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS recipes_title ON recipes(title);
`

// Interface compliance check.
var _ sous.RecipeStore = (*DB)(nil)

// DB is a recipe database.
type DB struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
// Use ":memory:" for a private in-memory database.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	// One connection keeps an in-memory database alive and serializes
	// writers.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Insert adds recipes in a single transaction and sets their IDs.
func (d *DB) Insert(ctx context.Context, recipes ...*sous.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO recipes (title, ingredients, directions, ner, search) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	defer stmt.Close()

	for _, r := range recipes {
		res, err := stmt.ExecContext(ctx,
			r.Title, encodeList(r.Ingredients), encodeList(r.Directions), encodeList(r.NER), searchText(r))
		if err != nil {
			return fmt.Errorf("sqlite: insert %q: %w", r.Title, err)
		}
		if r.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("sqlite: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	return nil
}

// Clear deletes every recipe.
func (d *DB) Clear(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM recipes`); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	return nil
}

// Count returns the number of stored recipes.
func (d *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: %w", err)
	}
	return n, nil
}

// Search returns up to limit recipes ranked by how many of the query's terms
// appear in their title, ingredients or ingredient names. Ties keep insertion
// order. A query with no usable terms matches nothing.
func (d *DB) Search(ctx context.Context, query string, limit int) ([]sous.Recipe, error) {
	terms := Terms(query)
	if len(terms) == 0 || limit <= 0 {
		return nil, nil
	}

	cases := make([]string, len(terms))
	args := make([]any, 0, len(terms)+1)
	for i, t := range terms {
		cases[i] = "(CASE WHEN search LIKE ? THEN 1 ELSE 0 END)"
		args = append(args, "%"+t+"%")
	}
	args = append(args, limit)

	q := `SELECT id, title, ingredients, directions, ner FROM (
		SELECT id, title, ingredients, directions, ner, ` + strings.Join(cases, " + ") + ` AS score
		FROM recipes
	) WHERE score > 0 ORDER BY score DESC, id LIMIT ?`

	rows, err := d.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: search: %w", err)
	}
	defer rows.Close()

	var out []sous.Recipe
	for rows.Next() {
		var (
			r                             sous.Recipe
			ingredients, directions, ners string
		)
		if err := rows.Scan(&r.ID, &r.Title, &ingredients, &directions, &ners); err != nil {
			return nil, fmt.Errorf("sqlite: search: %w", err)
		}
		r.Ingredients = decodeList(ingredients)
		r.Directions = decodeList(directions)
		r.NER = decodeList(ners)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: search: %w", err)
	}
	return out, nil
}

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "can": true, "for": true,
	"give": true, "have": true, "how": true, "make": true, "me": true,
	"recipe": true, "recipes": true, "some": true, "something": true,
	"the": true, "what": true, "which": true, "with": true, "want": true,
	"would": true, "you": true, "cook": true, "need": true, "like": true,
	"using": true, "please": true, "that": true, "this": true, "from": true,
}

// Terms extracts the lowercase search terms of query: runs of letters of at
// least three characters that are not stopwords, deduplicated, in order.
func Terms(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	seen := make(map[string]bool, len(fields))
	var terms []string
	for _, f := range fields {
		if len([]rune(f)) < 3 || stopwords[f] || seen[f] {
			continue
		}
		seen[f] = true
		terms = append(terms, f)
		if len(terms) == maxTerms {
			break
		}
	}
	return terms
}

func searchText(r *sous.Recipe) string {
	parts := make([]string, 0, 1+len(r.Ingredients)+len(r.NER))
	parts = append(parts, r.Title)
	parts = append(parts, r.Ingredients...)
	parts = append(parts, r.NER...)
	return strings.ToLower(strings.Join(parts, " | "))
}

func encodeList(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, _ := json.Marshal(items)
	return string(b)
}

func decodeList(s string) []string {
	var items []string
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil
	}
	return items
}
