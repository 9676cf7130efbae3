package overlay

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/flag-check-mcp/internal/config"
	"github.com/ironsheep/flag-check-mcp/internal/imaging"
	"github.com/ironsheep/flag-check-mcp/internal/synth"
	"github.com/ironsheep/flag-check-mcp/internal/validate"
)

func run(t *testing.T, o synth.Options) (*validate.Result, *imaging.PixelBuffer) {
	t.Helper()
	buf, err := imaging.FromImage(synth.Render(o))
	require.NoError(t, err)
	res, err := validate.Run(buf, config.Default())
	require.NoError(t, err)
	return res, buf
}

func TestRenderConformingFlag(t *testing.T) {
	o := synth.DefaultOptions()
	o.Width = 600
	res, buf := run(t, o)

	var out bytes.Buffer
	err := Render(&out, res, Options{Width: buf.Width, Height: buf.Height, Config: config.Default(), Labels: true})
	require.NoError(t, err)

	s := out.String()
	assert.True(t, strings.HasPrefix(s, "<?xml"))
	assert.Contains(t, s, `width="600" height="400"`)
	for _, id := range []string{"bands", "expected", "emblem", "annulus", "spokes", "labels"} {
		assert.Contains(t, s, `<g id="`+id+`">`)
	}
	assert.Equal(t, res.Spokes.Detected(), strings.Count(s, `class="spoke"`))
	assert.Contains(t, s, "spokes pass (24)")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(s), "</svg>"))
}

func TestRenderWithoutEmblem(t *testing.T) {
	o := synth.DefaultOptions()
	o.Width = 600
	o.OmitEmblem = true
	res, buf := run(t, o)

	var out bytes.Buffer
	require.NoError(t, Render(&out, res, Options{Width: buf.Width, Height: buf.Height, Config: config.Default()}))

	s := out.String()
	assert.Contains(t, s, `<g id="bands">`)
	assert.NotContains(t, s, `<g id="emblem">`)
	assert.NotContains(t, s, `<g id="labels">`)
	assert.Zero(t, strings.Count(s, `class="spoke"`))
}

func TestRenderBackground(t *testing.T) {
	o := synth.DefaultOptions()
	o.Width = 600
	res, buf := run(t, o)

	var out bytes.Buffer
	require.NoError(t, Render(&out, res, Options{
		Width: buf.Width, Height: buf.Height, Config: config.Default(),
		Background: "data:image/png;base64,AAAA",
	}))
	assert.Contains(t, out.String(), "data:image/png;base64,AAAA")
}

func TestRenderErrors(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, Render(&out, nil, Options{Width: 10, Height: 10}))
	assert.ErrorIs(t, Render(&out, &validate.Result{}, Options{}), imaging.ErrEmptyImage)
}
