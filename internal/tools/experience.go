package tools

import (
	"context"

	"folio/internal/portfolio"
)

type Experience struct {
	doc *portfolio.Document
}

func (e *Experience) Name() string        { return "get_experience" }
func (e *Experience) Description() string { return "Get work and fellowship experience." }

func (e *Experience) InputSchema() map[string]any { return noArgsSchema() }

func (e *Experience) Execute(ctx context.Context, input string) (string, error) {
	return dump(e.doc.Experience)
}
