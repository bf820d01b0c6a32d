package services

import (
	"fmt"
	"sort"
	"sync"

	"github.com/GAM-team/gam/internal/core/domain"
	"github.com/GAM-team/gam/internal/core/ports/driven"
	"github.com/GAM-team/gam/internal/core/ports/driving"
	"github.com/GAM-team/gam/internal/logger"
)

// Ensure Registry implements the interfaces.
var (
	_ driving.SchemaRegistry = (*Registry)(nil)
	_ driven.SchemaRegistrar = (*Registry)(nil)
)

// Registry indexes descriptors by element name. It is populated during
// start-up and read-shared afterwards.
type Registry struct {
	mu          sync.RWMutex
	descriptors map[domain.QName]*domain.Descriptor
	frozen      bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		descriptors: make(map[domain.QName]*domain.Descriptor),
	}
}

// Register installs d under its element name, replacing any earlier mapping.
func (r *Registry) Register(d *domain.Descriptor) error {
	if d == nil {
		return fmt.Errorf("%w: nil descriptor", domain.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("register %s: %w", d.Name(), domain.ErrRegistryFrozen)
	}
	if prev, ok := r.descriptors[d.Name()]; ok && prev != d {
		logger.Debug("Registry: %s now resolves to %s (was %s)", d.Name(), d.TypeName(), prev.TypeName())
	}
	r.descriptors[d.Name()] = d
	return nil
}

// RegisterAll registers descriptors in order, stopping at the first error.
func (r *Registry) RegisterAll(ds ...*domain.Descriptor) error {
	for _, d := range ds {
		if err := r.Register(d); err != nil {
			return err
		}
	}
	return nil
}

// Resolve looks up the descriptor registered for name.
func (r *Registry) Resolve(name domain.QName) (*domain.Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.descriptors[name]
	return d, ok
}

// New constructs an empty object of the type registered for name.
func (r *Registry) New(name domain.QName) (*domain.Object, bool) {
	d, ok := r.Resolve(name)
	if !ok {
		return nil, false
	}
	return domain.NewObject(d), true
}

// Descriptors returns all registered descriptors ordered by element name.
func (r *Registry) Descriptors() []*domain.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Descriptor, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name().String() < result[j].Name().String()
	})
	return result
}

// Freeze ends registration.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Frozen reports whether registration has ended.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}
