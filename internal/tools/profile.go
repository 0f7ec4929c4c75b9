package tools

import (
	"context"

	"folio/internal/portfolio"
)

type Profile struct {
	doc *portfolio.Document
}

func (p *Profile) Name() string { return "get_profile" }
func (p *Profile) Description() string {
	return "Get the core profile (name, tagline, about). Use for general introductions."
}
func (p *Profile) InputSchema() map[string]any { return noArgsSchema() }

func (p *Profile) Execute(ctx context.Context, input string) (string, error) {
	return dump(p.doc.Profile)
}

type About struct {
	doc *portfolio.Document
}

func (a *About) Name() string { return "get_about" }
func (a *About) Description() string {
	return "Get the about summary for the portfolio."
}
func (a *About) InputSchema() map[string]any { return noArgsSchema() }

func (a *About) Execute(ctx context.Context, input string) (string, error) {
	return dump(map[string]string{"about": a.doc.Profile.About})
}

type Contact struct {
	doc *portfolio.Document
}

func (c *Contact) Name() string { return "get_contact" }
func (c *Contact) Description() string {
	return "Get contact details (email). Use when the user asks how to reach out."
}
func (c *Contact) InputSchema() map[string]any { return noArgsSchema() }

func (c *Contact) Execute(ctx context.Context, input string) (string, error) {
	return dump(c.doc.Contact)
}

type Links struct {
	doc *portfolio.Document
}

func (l *Links) Name() string { return "get_links" }
func (l *Links) Description() string {
	return "Get public links (GitHub, LinkedIn, personal site)."
}
func (l *Links) InputSchema() map[string]any { return noArgsSchema() }

func (l *Links) Execute(ctx context.Context, input string) (string, error) {
	return dump(l.doc.Links)
}
