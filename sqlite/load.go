package sqlite

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/sous"
	"go.uber.org/zap"
)

const defaultBatchSize = 1000

// LoadOptions configures LoadCSV.
type LoadOptions struct {
	// BatchSize is the number of rows inserted per transaction.
	BatchSize int
	// MaxRows stops loading after this many rows. Zero loads everything.
	MaxRows int
	Logger  *zap.Logger
}

// LoadCSV replaces the stored recipes with the rows of a RecipeNLG-style CSV
// read from r and returns the number of rows loaded.
//
// The header must name title, ingredients, directions and NER columns in any
// order; other columns are ignored. List cells hold JSON string arrays; a
// cell that does not parse loads as an empty list.
func LoadCSV(ctx context.Context, db *DB, r io.Reader, opts LoadOptions) (int, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("sqlite: load: empty csv")
	}
	if err != nil {
		return 0, fmt.Errorf("sqlite: load: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return 0, err
	}

	if err := db.Clear(ctx); err != nil {
		return 0, err
	}

	total := 0
	batch := make([]*sous.Recipe, 0, opts.BatchSize)
	flush := func() error {
		if err := db.Insert(ctx, batch...); err != nil {
			return err
		}
		total += len(batch)
		log.Info("inserted batch", zap.Int("rows", len(batch)), zap.Int("total", total))
		batch = batch[:0]
		return nil
	}

	for opts.MaxRows == 0 || total+len(batch) < opts.MaxRows {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return total, fmt.Errorf("sqlite: load: %w", err)
		}
		batch = append(batch, cols.recipe(row))
		if len(batch) == opts.BatchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if len(batch) > 0 {
		if err := flush(); err != nil {
			return total, err
		}
	}
	return total, nil
}

type columns struct {
	title, ingredients, directions, ner int
}

func columnIndex(header []string) (columns, error) {
	cols := columns{-1, -1, -1, -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "title":
			cols.title = i
		case "ingredients":
			cols.ingredients = i
		case "directions":
			cols.directions = i
		case "ner":
			cols.ner = i
		}
	}
	for _, c := range []struct {
		name string
		i    int
	}{
		{"title", cols.title},
		{"ingredients", cols.ingredients},
		{"directions", cols.directions},
		{"NER", cols.ner},
	} {
		if c.i < 0 {
			return cols, fmt.Errorf("sqlite: load: missing %s column", c.name)
		}
	}
	return cols, nil
}

func (c columns) recipe(row []string) *sous.Recipe {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return &sous.Recipe{
		Title:       strings.TrimSpace(cell(c.title)),
		Ingredients: parseList(cell(c.ingredients)),
		Directions:  parseList(cell(c.directions)),
		NER:         parseList(cell(c.ner)),
	}
}

func parseList(cell string) []string {
	var items []string
	if err := json.Unmarshal([]byte(cell), &items); err != nil {
		return []string{}
	}
	return items
}
