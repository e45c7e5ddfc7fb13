// Package advisory picks canned farming advice for a question without
// calling a backend. It is the offline counterpart of the advisory API.
package advisory

import (
	"fmt"
	"strings"
)

type compiledRule struct {
	keywords []string
	reply    Reply
}

// Selector matches user text against the catalog rules. It holds no mutable
// state and is safe for concurrent use.
type Selector struct {
	rules        []compiledRule
	general      map[Language]Reply
	marathiTerms []string
	suffixes     []string
}

// NewSelector validates the catalog and resolves its references.
func NewSelector(catalog *Catalog) (*Selector, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog is nil")
	}
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	s := &Selector{
		rules:        make([]compiledRule, 0, len(catalog.Rules)),
		general:      make(map[Language]Reply, len(catalog.General)),
		marathiTerms: append([]string(nil), catalog.MarathiTerms...),
	}

	for _, sfx := range catalog.KeywordSuffixes {
		if sfx = strings.TrimSpace(sfx); sfx != "" {
			s.suffixes = append(s.suffixes, sfx)
		}
	}

	for _, rule := range catalog.Rules {
		reply, _ := catalog.Lookup(rule.Reply)
		keywords := make([]string, 0, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		s.rules = append(s.rules, compiledRule{keywords: keywords, reply: reply})
	}

	for language, ref := range catalog.General {
		reply, _ := catalog.Lookup(ref)
		s.general[language] = reply
	}

	return s, nil
}

// NewDefaultSelector builds a selector from the embedded catalog.
func NewDefaultSelector() *Selector {
	s, err := NewSelector(DefaultCatalog())
	if err != nil {
		panic(err)
	}
	return s
}

// OpenSelector builds a selector from the catalog file at path, or from
// the embedded catalog when path is empty.
func OpenSelector(path string) (*Selector, error) {
	if path == "" {
		return NewDefaultSelector(), nil
	}
	catalog, err := LoadCatalog(path)
	if err != nil {
		return nil, err
	}
	return NewSelector(catalog)
}

// Select returns the advisory reply for text. The first rule with a keyword
// found in the lower-cased input wins; Devanagari keywords only match whole
// words or words ending in a catalog suffix. Without a match the general
// reply for the detected language is returned.
func (s *Selector) Select(text string) Reply {
	lower := strings.ToLower(text)
	for _, rule := range s.rules {
		for _, kw := range rule.keywords {
			if matchKeyword(lower, kw, s.suffixes) {
				return rule.reply
			}
		}
	}
	return s.general[DetectLanguage(text, s.marathiTerms)]
}
