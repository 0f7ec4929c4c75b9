// Package portfolio loads the static portfolio document the agent answers
// questions about. The document is read once at startup and never mutated,
// so concurrent sessions can share it without locking.
package portfolio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Document is the full portfolio data set.
type Document struct {
	Profile    Profile             `json:"profile"`
	Contact    Contact             `json:"contact"`
	Links      map[string]string   `json:"links"`
	Education  []Education         `json:"education"`
	Skills     map[string][]string `json:"skills"`
	Experience []Experience        `json:"experience"`
	Projects   []Project           `json:"projects"`
}

type Profile struct {
	Name    string `json:"name"`
	Tagline string `json:"tagline"`
	About   string `json:"about"`
}

type Contact struct {
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
}

type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Start       string `json:"start"`
	End         string `json:"end"`
}

type Experience struct {
	Role       string   `json:"role"`
	Company    string   `json:"company"`
	Start      string   `json:"start"`
	End        string   `json:"end"`
	Highlights []string `json:"highlights,omitempty"`
}

type Project struct {
	Name    string   `json:"name"`
	Summary string   `json:"summary"`
	Link    string   `json:"link,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Load reads and decodes the portfolio JSON file at path. Exported JSON from
// some editors carries a UTF-8 BOM, which is stripped before decoding.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading portfolio data: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing portfolio data %s: %w", path, err)
	}

	if doc.Profile.Name == "" {
		return nil, fmt.Errorf("portfolio data %s: profile.name is missing", path)
	}

	return &doc, nil
}
