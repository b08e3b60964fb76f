package poem

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// FallbackGuidance is used for styles missing from the catalogue.
const FallbackGuidance = "Write with attention to rhythm, imagery, and emotional impact appropriate to the chosen style."

//go:embed catalog.yaml
var catalogYAML []byte

// StyleOption is one selectable poetic form.
type StyleOption struct {
	Value       string `yaml:"value" json:"value"`
	Label       string `yaml:"label" json:"label"`
	Description string `yaml:"description" json:"description"`
	Guidance    string `yaml:"guidance" json:"-"`
}

// MoodOption is one suggested mood.
type MoodOption struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// Catalog lists the styles and moods offered to users. Values outside the
// catalogue are still accepted by the generator.
type Catalog struct {
	Styles []StyleOption `yaml:"styles" json:"styles"`
	Moods  []MoodOption  `yaml:"moods" json:"moods"`

	guidance map[string]string
}

var defaultCatalog = mustLoadCatalog(catalogYAML)

// DefaultCatalog returns the built-in catalogue.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

func mustLoadCatalog(raw []byte) *Catalog {
	c, err := loadCatalog(raw)
	if err != nil {
		panic(err)
	}
	return c
}

func loadCatalog(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode style catalogue: %w", err)
	}

	c.guidance = make(map[string]string, len(c.Styles))
	for _, s := range c.Styles {
		key := strings.ToLower(strings.TrimSpace(s.Value))
		if key == "" || s.Guidance == "" {
			return nil, fmt.Errorf("style %q is missing a value or guidance", s.Label)
		}
		c.guidance[key] = s.Guidance
	}
	return &c, nil
}

// Guidance returns the structural instruction for style, matched
// case-insensitively, or FallbackGuidance.
func (c *Catalog) Guidance(style string) string {
	if g, ok := c.guidance[strings.ToLower(style)]; ok {
		return g
	}
	return FallbackGuidance
}
