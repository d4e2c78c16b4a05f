package qr

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	t.Run("produces a PNG of the requested size", func(t *testing.T) {
		out, err := New(256).Render("https://redirect.self.xyz?selfApp=%7B%7D")
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 256, img.Bounds().Dx())
		assert.Equal(t, 256, img.Bounds().Dy())
	})

	t.Run("default size", func(t *testing.T) {
		out, err := New(0).Render("hello")
		require.NoError(t, err)
		img, err := png.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, DefaultSize, img.Bounds().Dx())
	})

	t.Run("long content falls back to lower recovery", func(t *testing.T) {
		// Over high-recovery capacity (1273 bytes) but within low (2953).
		_, err := New(0).Render(strings.Repeat("a", 2000))
		require.NoError(t, err)
	})

	t.Run("content beyond any level fails", func(t *testing.T) {
		_, err := New(0).Render(strings.Repeat("a", 4000))
		require.Error(t, err)
	})

	t.Run("empty content fails", func(t *testing.T) {
		_, err := New(0).Render("")
		require.Error(t, err)
	})
}
