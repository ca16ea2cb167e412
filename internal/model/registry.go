package model

import (
	"fmt"

	"github.com/medwhisper/risk-engine/internal/domain"
)

// Registry is the immutable set of disease model adapters served by the
// engine. Diseases are iterated in registration order, which fixes the
// order of scores in every assessment.
type Registry struct {
	order    []string
	adapters map[string]domain.ModelAdapter
}

// NewRegistry builds a registry from an explicit adapter list. A
// duplicate disease registration is a configuration error.
func NewRegistry(adapters ...domain.ModelAdapter) (*Registry, error) {
	r := &Registry{
		order:    make([]string, 0, len(adapters)),
		adapters: make(map[string]domain.ModelAdapter, len(adapters)),
	}
	for _, a := range adapters {
		disease := a.Disease()
		if _, exists := r.adapters[disease]; exists {
			return nil, fmt.Errorf("duplicate model registration for disease: %s", disease)
		}
		r.order = append(r.order, disease)
		r.adapters[disease] = a
	}
	return r, nil
}

// Diseases returns the registered diseases in registration order.
func (r *Registry) Diseases() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Get returns the adapter for a disease.
func (r *Registry) Get(disease string) (domain.ModelAdapter, bool) {
	a, ok := r.adapters[disease]
	return a, ok
}

// Len returns the number of registered diseases.
func (r *Registry) Len() int {
	return len(r.order)
}
