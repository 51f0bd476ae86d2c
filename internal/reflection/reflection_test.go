package reflection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReflection_FullName(t *testing.T) {
	p := NewProject("proj")
	mod := &Reflection{Name: "Foo", Kind: KindModule}
	ns := &Reflection{Name: "Bar", Kind: KindNamespace}
	class := &Reflection{Name: "Baz", Kind: KindClass}
	p.Root.AddChild(mod)
	mod.AddChild(ns)
	ns.AddChild(class)

	assert.Equal(t, "Foo.Bar.Baz", class.FullName())
	assert.Equal(t, "Foo", mod.FullName())
	assert.Equal(t, "", p.Root.FullName())
	assert.Same(t, ns, class.Parent)
}

func TestKind_ParseRoundTrip(t *testing.T) {
	for k := KindProject; k <= KindVariable; k++ {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	_, err := ParseKind("Widget")
	assert.Error(t, err)
}

func TestKind_OwnsPage(t *testing.T) {
	assert.True(t, KindClass.OwnsPage())
	assert.True(t, KindNamespace.OwnsPage())
	assert.False(t, KindMethod.OwnsPage())
	assert.False(t, KindTypeAlias.OwnsPage())
	assert.Equal(t, "Classes", KindClass.Plural())
}
