package advisory

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shetkarimitra/advisor/internal/model/chat"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Reply is a canned advisory answer.
type Reply struct {
	Text    string        `yaml:"text"`
	Sources []chat.Source `yaml:"sources"`
}

// Rule maps a set of keywords to a reply reference such as "marathi.tomato".
type Rule struct {
	Reply    string   `yaml:"reply"`
	Keywords []string `yaml:"keywords"`
}

// Catalog is the declarative form of the mock responses.
type Catalog struct {
	Replies      map[string]map[string]Reply `yaml:"replies"`
	Rules        []Rule                      `yaml:"rules"`
	General      map[Language]string         `yaml:"general"`
	MarathiTerms []string                    `yaml:"marathi_terms"`

	// KeywordSuffixes are inflections allowed after a Devanagari keyword.
	KeywordSuffixes []string `yaml:"keyword_suffixes"`
}

// ParseCatalog decodes a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return &catalog, nil
}

// LoadCatalog reads a YAML catalog from disk.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// DefaultCatalog returns the catalog compiled into the binary.
func DefaultCatalog() *Catalog {
	catalog, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return catalog
}

// Lookup resolves a "language.topic" reference.
func (c *Catalog) Lookup(ref string) (Reply, bool) {
	language, topic, ok := strings.Cut(ref, ".")
	if !ok {
		return Reply{}, false
	}
	replies, ok := c.Replies[language]
	if !ok {
		return Reply{}, false
	}
	reply, ok := replies[topic]
	return reply, ok
}

// Validate checks that every reference in the catalog resolves.
func (c *Catalog) Validate() error {
	for i, rule := range c.Rules {
		if len(rule.Keywords) == 0 {
			return fmt.Errorf("rule %d (%s) has no keywords", i, rule.Reply)
		}
		if _, ok := c.Lookup(rule.Reply); !ok {
			return fmt.Errorf("rule %d references unknown reply %q", i, rule.Reply)
		}
	}
	for _, language := range []Language{Marathi, Hindi, English} {
		ref, ok := c.General[language]
		if !ok {
			return fmt.Errorf("missing general reply for %s", language)
		}
		if _, ok := c.Lookup(ref); !ok {
			return fmt.Errorf("general reply for %s references unknown reply %q", language, ref)
		}
	}
	return nil
}
