package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GAM-team/gam/internal/core/domain"
)

func TestRegistry_RegisterAndResolve(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(contactDesc))

	d, ok := r.Resolve(tn("contact"))
	require.True(t, ok)
	assert.Same(t, contactDesc, d)

	_, ok = r.Resolve(tn("missing"))
	assert.False(t, ok)

	_, ok = r.Resolve(domain.Name("urn:other", "contact"))
	assert.False(t, ok, "namespace is part of the key")
}

func TestRegistry_New(t *testing.T) {
	r := newTestRegistry()

	obj, ok := r.New(tn("phone"))
	require.True(t, ok)
	assert.Same(t, phoneDesc, obj.Descriptor())
	assert.True(t, obj.IsEmpty())

	_, ok = r.New(tn("missing"))
	assert.False(t, ok)
}

func TestRegistry_LastRegistrationWins(t *testing.T) {
	r := newTestRegistry()
	special := domain.NewDescriptor(tn("phone"), "test:mobile").
		Extends(phoneDesc).
		Attr("carrier", plain("carrier")).
		MustBuild()

	require.NoError(t, r.Register(special))

	d, ok := r.Resolve(tn("phone"))
	require.True(t, ok)
	assert.Equal(t, "test:mobile", d.TypeName())

	// re-registering the same descriptor is harmless
	require.NoError(t, r.Register(special))
	assert.Len(t, r.Descriptors(), 4)
}

func TestRegistry_DescriptorsOrderedByName(t *testing.T) {
	r := newTestRegistry()

	var names []string
	for _, d := range r.Descriptors() {
		names = append(names, d.Name().Local)
	}

	assert.Equal(t, []string{"address", "contact", "phone", "point"}, names)
}

func TestRegistry_Freeze(t *testing.T) {
	r := newTestRegistry()
	assert.False(t, r.Frozen())

	r.Freeze()

	assert.True(t, r.Frozen())
	err := r.Register(domain.Leaf(tn("late")))
	assert.ErrorIs(t, err, domain.ErrRegistryFrozen)
	_, ok := r.Resolve(tn("late"))
	assert.False(t, ok)

	// reads still work
	_, ok = r.Resolve(tn("contact"))
	assert.True(t, ok)
}

func TestRegistry_RegisterErrors(t *testing.T) {
	r := NewRegistry()

	assert.ErrorIs(t, r.Register(nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, r.RegisterAll(pointDesc, nil, phoneDesc), domain.ErrInvalidInput)

	_, ok := r.Resolve(tn("phone"))
	assert.False(t, ok, "registration stops at the first error")
}

func TestRegistry_ConcurrentReads(t *testing.T) {
	r := newTestRegistry()
	r.Freeze()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = r.Resolve(tn("contact"))
				_ = r.Descriptors()
			}
		}()
	}
	wg.Wait()
}
