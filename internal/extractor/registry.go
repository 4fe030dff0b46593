package extractor

import (
	"fmt"

	"docsight/internal/domain"
	"docsight/internal/port"
)

// Registry maps provider names to constructed page extractors. Lookup is
// case-sensitive; registration order is preserved for listing.
type Registry struct {
	names  []string
	byName map[string]port.PageExtractor
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]port.PageExtractor)}
}

// Register adds an extractor under the given provider name, replacing any
// previous registration of the same name.
func (r *Registry) Register(name string, ext port.PageExtractor) {
	if _, ok := r.byName[name]; !ok {
		r.names = append(r.names, name)
	}
	r.byName[name] = ext
}

// Get returns the extractor for a provider name, or ErrInvalidProvider for
// an unknown name.
func (r *Registry) Get(name string) (port.PageExtractor, error) {
	ext, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, name)
	}
	return ext, nil
}

// Models returns the model catalog of a provider, or ErrInvalidProvider for
// an unknown name.
func (r *Registry) Models(name string) ([]string, error) {
	ext, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return ext.Models(), nil
}

// Providers lists registered provider names in registration order.
func (r *Registry) Providers() []string {
	return append([]string(nil), r.names...)
}
