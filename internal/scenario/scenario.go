// Package scenario ships the curated lesson catalog: the vocabulary
// categories a child can pick on the home screen, and the roleplay scenarios
// with their characters and greetings.
package scenario

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yml
var catalogYAML []byte

// Category is a vocabulary topic shown on the home screen.
type Category struct {
	ID      string `yaml:"id" json:"id"`
	Name    string `yaml:"name" json:"name"`
	Chinese string `yaml:"chinese" json:"chinese"`
	Emoji   string `yaml:"emoji" json:"emoji"`
}

// Scenario is a roleplay setting with the character the child talks to. The
// Setting text goes into the gateway's system prompt; the Greeting seeds the
// transcript.
type Scenario struct {
	ID        string `yaml:"id" json:"id"`
	Title     string `yaml:"title" json:"title"`
	Chinese   string `yaml:"chinese" json:"chinese"`
	Emoji     string `yaml:"emoji" json:"emoji"`
	Character string `yaml:"character" json:"character"`
	Setting   string `yaml:"setting" json:"setting"`
	Greeting  string `yaml:"greeting" json:"greeting"`
}

// Catalog holds the full curated lesson catalog.
type Catalog struct {
	Categories []Category `yaml:"categories" json:"categories"`
	Scenarios  []Scenario `yaml:"scenarios" json:"scenarios"`
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(catalogYAML, &catalog); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal catalog: %w", err)
	}
	if len(catalog.Categories) == 0 {
		return nil, fmt.Errorf("catalog has no categories")
	}
	if len(catalog.Scenarios) == 0 {
		return nil, fmt.Errorf("catalog has no scenarios")
	}
	return &catalog, nil
}

// FindCategory returns the category with the given id.
func (catalog *Catalog) FindCategory(id string) (Category, bool) {
	for _, category := range catalog.Categories {
		if category.ID == id {
			return category, true
		}
	}
	return Category{}, false
}

// FindScenario returns the scenario with the given id.
func (catalog *Catalog) FindScenario(id string) (Scenario, bool) {
	for _, entry := range catalog.Scenarios {
		if entry.ID == id {
			return entry, true
		}
	}
	return Scenario{}, false
}
