// Package catalog loads and serves the read-only collection of lab
// definitions. Labs are loaded once at construction and never mutated, so
// lookups are safe for concurrent use without locking.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/decoy/internal/domain/model"
	"github.com/okian/decoy/pkg/logger"
)

// indexFileName lists the lab ids the catalog should load from its directory.
const indexFileName = "labs-index.json"

// Summary is the listing shape returned for catalog browsing.
type Summary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Difficulty string `json:"difficulty"`
	Summary    string `json:"summary"`
	TrapCount  int    `json:"trapCount"`
}

// Catalog is an immutable, versioned collection of lab definitions.
type Catalog struct {
	order []string
	byID  map[string]model.LabDefinition

	dir string
	log logger.Logger
}

// Option applies a configuration option to the Catalog.
type Option func(*Catalog)

// WithDir sets the directory holding labs-index.json and per-lab files.
func WithDir(dir string) Option {
	return func(c *Catalog) {
		c.dir = dir
	}
}

// WithLogger sets a custom logger for load diagnostics.
func WithLogger(log logger.Logger) Option {
	return func(c *Catalog) {
		if log != nil {
			c.log = log
		}
	}
}

// New builds a catalog by loading every lab named in the index file. Labs
// that fail to read, parse, or validate are skipped with a logged error so a
// single bad file cannot take the whole catalog down.
func New(ctx context.Context, opts ...Option) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]model.LabDefinition)}
	for _, opt := range opts {
		opt(c)
	}
	if c.dir == "" {
		return nil, ErrNoSource
	}

	schema, err := compileLabSchema()
	if err != nil {
		return nil, err
	}

	rawIndex, err := os.ReadFile(filepath.Join(c.dir, indexFileName))
	if err != nil {
		return nil, fmt.Errorf("read lab index: %w", err)
	}
	var index []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rawIndex, &index); err != nil {
		return nil, fmt.Errorf("parse lab index: %w", err)
	}

	for _, meta := range index {
		path := filepath.Join(c.dir, meta.ID+".json")
		raw, err := os.ReadFile(path)
		if err != nil {
			c.warn(ctx, "skipping unreadable lab", meta.ID, err)
			continue
		}
		if err := validateLab(schema, raw); err != nil {
			c.warn(ctx, "skipping invalid lab", meta.ID, err)
			continue
		}
		var lab model.LabDefinition
		if err := json.Unmarshal(raw, &lab); err != nil {
			c.warn(ctx, "skipping undecodable lab", meta.ID, err)
			continue
		}
		if lab.ID != meta.ID {
			c.warn(ctx, "skipping lab with mismatched id", meta.ID, fmt.Errorf("%w: file declares %q", ErrInvalidLab, lab.ID))
			continue
		}
		c.add(lab)
	}

	return c, nil
}

// FromDefinitions builds a catalog directly from in-memory definitions.
// Used by tests and embedded deployments that skip the file loader.
func FromDefinitions(labs ...model.LabDefinition) *Catalog {
	c := &Catalog{byID: make(map[string]model.LabDefinition, len(labs))}
	for _, lab := range labs {
		c.add(lab)
	}
	return c
}

func (c *Catalog) add(lab model.LabDefinition) {
	if _, exists := c.byID[lab.ID]; !exists {
		c.order = append(c.order, lab.ID)
	}
	c.byID[lab.ID] = lab
}

func (c *Catalog) warn(ctx context.Context, msg, labID string, err error) {
	if c.log == nil {
		return
	}
	c.log.Warn(ctx, msg, logger.String("labId", labID), logger.Error(err))
}

// List returns summaries for every loaded lab, in index order.
func (c *Catalog) List(ctx context.Context) []Summary {
	out := make([]Summary, 0, len(c.order))
	for _, id := range c.order {
		lab := c.byID[id]
		out = append(out, Summary{
			ID:         lab.ID,
			Name:       lab.Name,
			Type:       lab.Type,
			Difficulty: lab.Difficulty,
			Summary:    lab.Summary,
			TrapCount:  len(lab.Traps),
		})
	}
	return out
}

// Get returns the full definition for a lab id.
// Returns ErrNotFound for unknown ids.
func (c *Catalog) Get(ctx context.Context, id string) (model.LabDefinition, error) {
	lab, ok := c.byID[id]
	if !ok {
		return model.LabDefinition{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return lab, nil
}

// Len returns the number of loaded labs.
func (c *Catalog) Len() int {
	return len(c.byID)
}
