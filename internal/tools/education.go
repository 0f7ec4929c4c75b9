package tools

import (
	"context"

	"folio/internal/portfolio"
)

type Education struct {
	doc *portfolio.Document
}

func (e *Education) Name() string        { return "get_education" }
func (e *Education) Description() string { return "Get education history." }

func (e *Education) InputSchema() map[string]any { return noArgsSchema() }

func (e *Education) Execute(ctx context.Context, input string) (string, error) {
	return dump(e.doc.Education)
}
