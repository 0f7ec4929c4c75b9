package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"folio/internal/portfolio"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

type Projects struct {
	doc *portfolio.Document
}

func (p *Projects) Name() string        { return "get_projects" }
func (p *Projects) Description() string { return "Get the portfolio projects." }

func (p *Projects) InputSchema() map[string]any { return noArgsSchema() }

func (p *Projects) Execute(ctx context.Context, input string) (string, error) {
	return dump(p.doc.Projects)
}

type SearchProjects struct {
	doc *portfolio.Document
}

func (s *SearchProjects) Name() string { return "search_projects" }
func (s *SearchProjects) Description() string {
	return "Search projects by keyword in name, summary or tags. An empty keyword returns all projects."
}

func (s *SearchProjects) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"keyword": map[string]any{
				"type":        "string",
				"description": "Search keyword (e.g. 'Power BI', 'Python')",
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Max results. Default 10.",
			},
		},
		"required":             []string{"keyword"},
		"additionalProperties": false,
	}
}

func (s *SearchProjects) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Keyword string `json:"keyword"`
		Limit   int    `json:"limit"`
	}
	if input != "" {
		if err := json.Unmarshal([]byte(input), &args); err != nil {
			return "", fmt.Errorf("parsing search_projects input: %w", err)
		}
	}

	matches := Search(s.doc.Projects, args.Keyword)

	limit := args.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}

	return dump(matches)
}

// Search returns the projects whose name, summary or tags contain keyword,
// case-insensitively, preserving document order. An empty keyword matches
// every project.
func Search(projects []portfolio.Project, keyword string) []portfolio.Project {
	matches := []portfolio.Project{}
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	for _, p := range projects {
		if keyword == "" || projectMatches(p, keyword) {
			matches = append(matches, p)
		}
	}
	return matches
}

func projectMatches(p portfolio.Project, keyword string) bool {
	haystack := strings.ToLower(p.Name + " " + p.Summary + " " + strings.Join(p.Tags, " "))
	return strings.Contains(haystack, keyword)
}
