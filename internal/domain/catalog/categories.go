package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"housie/internal/pkg/i18n"
)

//go:embed categories.yaml
var categoriesYAML []byte

type Category struct {
	Slug     string     `json:"slug" yaml:"slug"`
	NameEN   string     `json:"-" yaml:"name_en"`
	NameFR   string     `json:"-" yaml:"name_fr"`
	Children []Category `json:"children,omitempty" yaml:"children"`
}

func (c Category) Name(locale string) string {
	if locale == i18n.FR && c.NameFR != "" {
		return c.NameFR
	}
	return c.NameEN
}

// CategoryView is a category rendered in one locale.
type CategoryView struct {
	Slug     string         `json:"slug"`
	Name     string         `json:"name"`
	Children []CategoryView `json:"children,omitempty"`
}

// Taxonomy is the immutable category tree plus a slug index.
type Taxonomy struct {
	roots []Category
	index map[string]*Category
}

func LoadTaxonomy() (*Taxonomy, error) {
	return parseTaxonomy(categoriesYAML)
}

func parseTaxonomy(data []byte) (*Taxonomy, error) {
	var doc struct {
		Categories []Category `yaml:"categories"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse categories: %w", err)
	}

	t := &Taxonomy{roots: doc.Categories, index: make(map[string]*Category)}
	var walk func(nodes []Category) error
	walk = func(nodes []Category) error {
		for i := range nodes {
			n := &nodes[i]
			if n.Slug == "" {
				return fmt.Errorf("parse categories: category without slug")
			}
			if _, dup := t.index[n.Slug]; dup {
				return fmt.Errorf("parse categories: duplicate slug %q", n.Slug)
			}
			t.index[n.Slug] = n
			if err := walk(n.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(t.roots); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Taxonomy) Has(slug string) bool {
	_, ok := t.index[slug]
	return ok
}

// Tree renders the taxonomy in the given locale.
func (t *Taxonomy) Tree(locale string) []CategoryView {
	return render(t.roots, locale)
}

func render(nodes []Category, locale string) []CategoryView {
	out := make([]CategoryView, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, CategoryView{
			Slug:     n.Slug,
			Name:     n.Name(locale),
			Children: render(n.Children, locale),
		})
	}
	return out
}

// Expand returns slug followed by every descendant slug, depth first.
func (t *Taxonomy) Expand(slug string) ([]string, error) {
	root, ok := t.index[slug]
	if !ok {
		return nil, ErrUnknownCategory
	}

	var out []string
	var walk func(c *Category)
	walk = func(c *Category) {
		out = append(out, c.Slug)
		for i := range c.Children {
			walk(&c.Children[i])
		}
	}
	walk(root)
	return out, nil
}
