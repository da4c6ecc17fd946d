package news

import (
	_ "embed"
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

//go:embed catalog.toml
var catalogTOML []byte

// Choice is one selectable value with its display label.
type Choice struct {
	Code  string `toml:"code"`
	Label string `toml:"label"`
}

// Catalog lists the countries, categories and sort options the UI offers.
type Catalog struct {
	Countries  []Choice `toml:"countries"`
	Categories []Choice `toml:"categories"`
	Sorts      []Choice `toml:"sorts"`
}

var defaultCatalog = mustLoadCatalog(catalogTOML)

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// LoadCatalog decodes a catalog from TOML.
func LoadCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if len(c.Countries) == 0 || len(c.Categories) == 0 || len(c.Sorts) == 0 {
		return nil, fmt.Errorf("catalog must list countries, categories and sorts")
	}
	return &c, nil
}

func mustLoadCatalog(data []byte) *Catalog {
	c, err := LoadCatalog(data)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) HasCountry(v Country) bool { return indexOf(c.Countries, string(v)) >= 0 }

func (c *Catalog) HasCategory(v Category) bool { return indexOf(c.Categories, string(v)) >= 0 }

func (c *Catalog) HasSort(v SortOption) bool { return indexOf(c.Sorts, string(v)) >= 0 }

func (c *Catalog) CountryLabel(v Country) string { return labelOf(c.Countries, string(v)) }

func (c *Catalog) CategoryLabel(v Category) string { return labelOf(c.Categories, string(v)) }

func (c *Catalog) SortLabel(v SortOption) string { return labelOf(c.Sorts, string(v)) }

// NextCountry returns the country step positions away from v, wrapping
// around. An unknown v starts from the first entry.
func (c *Catalog) NextCountry(v Country, step int) Country {
	return Country(cycle(c.Countries, string(v), step))
}

func (c *Catalog) NextCategory(v Category, step int) Category {
	return Category(cycle(c.Categories, string(v), step))
}

func (c *Catalog) NextSort(v SortOption, step int) SortOption {
	return SortOption(cycle(c.Sorts, string(v), step))
}

func indexOf(choices []Choice, code string) int {
	for i, ch := range choices {
		if ch.Code == code {
			return i
		}
	}
	return -1
}

func labelOf(choices []Choice, code string) string {
	if i := indexOf(choices, code); i >= 0 {
		return choices[i].Label
	}
	return code
}

func cycle(choices []Choice, code string, step int) string {
	n := len(choices)
	if n == 0 {
		return code
	}
	i := indexOf(choices, code)
	if i < 0 {
		return choices[0].Code
	}
	return choices[((i+step)%n+n)%n].Code
}
