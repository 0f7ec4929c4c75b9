package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"folio/internal/portfolio"
)

type Skills struct {
	doc *portfolio.Document
}

func (s *Skills) Name() string { return "get_skills" }
func (s *Skills) Description() string {
	return "Get the skills list grouped by category, optionally filtered to one category."
}

func (s *Skills) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"category": map[string]any{
				"type":        "string",
				"description": "Optional category name to filter by (e.g. 'analytics')",
			},
		},
		"additionalProperties": false,
	}
}

func (s *Skills) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Category string `json:"category"`
	}
	if input != "" {
		if err := json.Unmarshal([]byte(input), &args); err != nil {
			return "", fmt.Errorf("parsing get_skills input: %w", err)
		}
	}

	if args.Category == "" {
		return dump(s.doc.Skills)
	}

	for category, names := range s.doc.Skills {
		if strings.EqualFold(category, args.Category) {
			return dump(map[string][]string{category: names})
		}
	}
	return "", fmt.Errorf("unknown skills category: %s", args.Category)
}
