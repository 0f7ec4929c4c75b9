// Package tools exposes the read-only query functions the model may call.
// The catalog is closed: every tool is registered in NewCatalog, operates
// only on the loaded portfolio document and is deterministic for a given
// document.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"folio/internal/portfolio"
)

type Tool interface {
	Name() string
	Description() string
	InputSchema() map[string]any
	Execute(ctx context.Context, input string) (string, error)
}

// Catalog holds the fixed tool set in a stable order.
type Catalog struct {
	ordered []Tool
	byName  map[string]Tool
}

func NewCatalog(doc *portfolio.Document) *Catalog {
	c := &Catalog{byName: make(map[string]Tool)}
	for _, t := range []Tool{
		&Profile{doc: doc},
		&About{doc: doc},
		&Contact{doc: doc},
		&Links{doc: doc},
		&Education{doc: doc},
		&Skills{doc: doc},
		&Experience{doc: doc},
		&Projects{doc: doc},
		&SearchProjects{doc: doc},
	} {
		c.ordered = append(c.ordered, t)
		c.byName[t.Name()] = t
	}
	return c
}

// Lookup returns the tool with the given name, if it exists.
func (c *Catalog) Lookup(name string) (Tool, bool) {
	t, ok := c.byName[name]
	return t, ok
}

// All returns the tools in registration order.
func (c *Catalog) All() []Tool {
	return c.ordered
}

// dump renders tool results the way they are handed to the model.
func dump(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding tool result: %w", err)
	}
	return string(b), nil
}

// noArgsSchema is the schema shared by tools that take no parameters.
func noArgsSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           map[string]any{},
		"additionalProperties": false,
	}
}
