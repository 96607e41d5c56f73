package data

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

type itemsFile struct {
	Items []Item `yaml:"items"`
}

type imagesFile struct {
	BasePortrait string            `yaml:"base_portrait"`
	Images       map[string]string `yaml:"images"`
}

// Catalog holds all static item definitions, indexed at load time.
// Read-only after LoadCatalog.
type Catalog struct {
	byKind       map[Kind][]Item
	byName       map[string]*Item
	images       map[string]string
	basePortrait string
}

// LoadCatalog loads item templates and the image map from YAML files.
func LoadCatalog(itemsPath, imagesPath string) (*Catalog, error) {
	raw, err := os.ReadFile(itemsPath)
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}
	var f itemsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse items: %w", err)
	}

	c := &Catalog{
		byKind: make(map[Kind][]Item),
		byName: make(map[string]*Item),
		images: make(map[string]string),
	}
	for _, it := range f.Items {
		if it.Name == "" || it.Kind == "" {
			return nil, fmt.Errorf("item without name/kind in %s", itemsPath)
		}
		c.byKind[it.Kind] = append(c.byKind[it.Kind], it)
	}
	for kind, items := range c.byKind {
		classifyRarity(items)
		for i := range items {
			c.byName[NormalizeName(items[i].Name)] = &items[i]
		}
		c.byKind[kind] = items
	}

	if imagesPath != "" {
		raw, err := os.ReadFile(imagesPath)
		if err != nil {
			return nil, fmt.Errorf("read images: %w", err)
		}
		var imf imagesFile
		if err := yaml.Unmarshal(raw, &imf); err != nil {
			return nil, fmt.Errorf("parse images: %w", err)
		}
		c.basePortrait = imf.BasePortrait
		for name, url := range imf.Images {
			c.images[NormalizeName(name)] = url
		}
	}
	return c, nil
}

// classifyRarity fills in missing rarity tags per the thirds rule: sort by
// ascending chance, the top third is very_rare, the middle rare, the rest
// common. At least one item lands in the top third.
func classifyRarity(items []Item) {
	var missing []*Item
	for i := range items {
		if items[i].Rarity == "" {
			missing = append(missing, &items[i])
		}
	}
	if len(missing) == 0 {
		return
	}
	sort.SliceStable(missing, func(i, j int) bool { return missing[i].Chance < missing[j].Chance })
	third := len(missing) / 3
	if third == 0 {
		third = 1
	}
	for i, it := range missing {
		switch {
		case i < third:
			it.Rarity = RarityVeryRare
		case i < 2*third:
			it.Rarity = RarityRare
		default:
			it.Rarity = RarityCommon
		}
	}
}

// ItemsByKind returns the templates of one kind. Callers must not mutate.
func (c *Catalog) ItemsByKind(kind Kind) []Item {
	return c.byKind[kind]
}

// FindByName looks an item up by display name, case- and punctuation-insensitive.
func (c *Catalog) FindByName(name string) *Item {
	return c.byName[NormalizeName(name)]
}

// ImageURL returns the portrait overlay URL for an item name, or "".
func (c *Catalog) ImageURL(name string) string {
	return c.images[NormalizeName(name)]
}

// BasePortraitURL returns the inventory portrait background.
func (c *Catalog) BasePortraitURL() string {
	return c.basePortrait
}

// ItemsForCase returns every template eligible for the given crate.
// Sign items are included only when includeSigns is set.
func (c *Catalog) ItemsForCase(ct CaseType, includeSigns bool) []Item {
	var out []Item
	for _, kind := range Kinds {
		if kind == KindSign && !includeSigns {
			continue
		}
		for _, it := range c.byKind[kind] {
			if it.EligibleFor(ct) {
				out = append(out, it)
			}
		}
	}
	return out
}

// DropPool returns the union PvE drop pool: every non-sign template.
func (c *Catalog) DropPool() []Item {
	var out []Item
	for _, kind := range Kinds {
		if kind == KindSign {
			continue
		}
		out = append(out, c.byKind[kind]...)
	}
	return out
}

// Count returns the number of loaded templates.
func (c *Catalog) Count() int {
	n := 0
	for _, items := range c.byKind {
		n += len(items)
	}
	return n
}
