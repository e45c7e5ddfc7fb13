package ai

import (
	"context"

	"github.com/shetkarimitra/advisor/internal/analysis/advisory"
	"github.com/shetkarimitra/advisor/internal/model/chat"
)

// CatalogResponder answers from the offline reply catalog. It is used when
// no chat model is configured.
type CatalogResponder struct {
	selector *advisory.Selector
}

// NewCatalogResponder wraps a selector.
func NewCatalogResponder(selector *advisory.Selector) *CatalogResponder {
	return &CatalogResponder{selector: selector}
}

// Respond ignores history; the catalog is keyed on the question alone.
func (r *CatalogResponder) Respond(_ context.Context, _ string, _ []chat.Message, question string) (chat.Answer, error) {
	reply := r.selector.Select(question)
	return chat.Answer{Text: reply.Text, Sources: reply.Sources}, nil
}
