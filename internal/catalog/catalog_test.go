package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()

	assert.Len(t, c.All(), 9)
	assert.Equal(t, "Acrylic Painting", c.Name("acrylic"))
	assert.Equal(t, "Madhubani Painting", c.Name(" Madhubani "))
	assert.Equal(t, "watercolour portrait", c.Name("watercolour portrait"))
	assert.Empty(t, c.Name(""))
}

func TestNormalize(t *testing.T) {
	c := Default()

	assert.Equal(t, "gond", c.Normalize("GOND"))
	assert.Equal(t, OtherSlug, c.Normalize("oil on canvas"))
	assert.Equal(t, "acrylic", c.Normalize("Acrylic Painting"))
	assert.Equal(t, "mixed-media", c.Normalize("  mixed   media PAINTING "))
	assert.Equal(t, OtherSlug, c.Normalize("Other / Not Sure"))
	assert.Equal(t, OtherSlug, c.Normalize(""))
	assert.True(t, c.Has("lippan"))
	assert.False(t, c.Has("lippan-art"))
}

func TestParse(t *testing.T) {
	t.Run("duplicate slug", func(t *testing.T) {
		_, err := Parse([]byte("- {slug: a, name: A}\n- {slug: A, name: B}\n"))
		require.Error(t, err)
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := Parse([]byte("- {slug: a, name: Oil}\n- {slug: b, name: oil}\n"))
		require.Error(t, err)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := Parse([]byte("- {slug: a}\n"))
		require.Error(t, err)
	})

	t.Run("keeps file order", func(t *testing.T) {
		c, err := Parse([]byte("- {slug: b, name: B}\n- {slug: a, name: A}\n"))
		require.NoError(t, err)
		all := c.All()
		require.Len(t, all, 2)
		assert.Equal(t, "b", all[0].Slug)
	})
}
