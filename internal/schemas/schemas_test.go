package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GAM-team/gam/internal/core/domain"
	"github.com/GAM-team/gam/internal/core/services"
	"github.com/GAM-team/gam/internal/schemas/atom"
	"github.com/GAM-team/gam/internal/schemas/gdata"
)

type failingRegistrar struct {
	err   error
	calls int
}

func (f *failingRegistrar) Register(*domain.Descriptor) error {
	f.calls++
	return f.err
}

func (f *failingRegistrar) Resolve(domain.QName) (*domain.Descriptor, bool) { return nil, false }

func TestRegisterBuiltins(t *testing.T) {
	reg := services.NewRegistry()

	require.NoError(t, RegisterBuiltins(reg))

	assert.Len(t, reg.Descriptors(), len(atom.Descriptors())+len(gdata.Descriptors()))
	for _, name := range []domain.QName{atom.N("feed"), atom.N("entry"), gdata.B("status"), gdata.N("who")} {
		_, ok := reg.Resolve(name)
		assert.True(t, ok, name.String())
	}

	entry, _ := reg.Resolve(atom.N("entry"))
	assert.Equal(t, "atom:entry", entry.TypeName(), "event kind is opt-in")
}

func TestRegisterBuiltins_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	reg := &failingRegistrar{err: boom}

	err := RegisterBuiltins(reg)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, reg.calls)
}

func TestPrefixes(t *testing.T) {
	prefixes := Prefixes()

	assert.Equal(t, "atom", prefixes[atom.Namespace])
	assert.Equal(t, "gd", prefixes[gdata.Namespace])
	assert.Equal(t, "batch", prefixes[gdata.BatchNamespace])
	assert.Equal(t, "openSearch", prefixes[gdata.OpenSearchNamespace])

	// callers may extend their copy
	prefixes["urn:x"] = "x"
	assert.NotContains(t, Prefixes(), "urn:x")
}
