package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_DefaultsToIndexName(t *testing.T) {
	r := New()
	assert.Equal(t, "7", r.GetName(7))
	assert.False(t, r.GetEnabled(7))
}

func TestRegistry_SetAndGet(t *testing.T) {
	r := New()
	r.Set(0, true, "A", Color{R: 255})
	assert.True(t, r.GetEnabled(0))
	assert.Equal(t, "A", r.GetName(0))
	assert.Equal(t, Color{R: 255}, r.GetColor(0))
}

func TestRegistry_NullNameResetsToIndex(t *testing.T) {
	r := New()
	r.SetName(3, "custom")
	assert.Equal(t, "custom", r.GetName(3))
	r.SetName(3, "")
	assert.Equal(t, "3", r.GetName(3))
}

func TestRegistry_NameTruncation(t *testing.T) {
	r := New()
	long := "this-name-is-definitely-longer-than-twenty-nine-chars"
	r.SetName(1, long)
	assert.LessOrEqual(t, len(r.GetName(1)), 29)
	assert.Equal(t, long[:29], r.GetName(1))
}

func TestRegistry_BoundsChecked(t *testing.T) {
	r := New()
	assert.NotPanics(t, func() {
		r.Set(-1, true, "x", Color{})
		r.Set(32, true, "x", Color{})
		r.SetEnabled(100, true)
		r.SetName(-5, "x")
		r.SetColor(32, Color{})
	})
	assert.False(t, r.GetEnabled(-1))
	assert.False(t, r.GetEnabled(32))
	assert.Equal(t, "", r.GetName(32))
}
