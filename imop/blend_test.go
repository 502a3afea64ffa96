package imop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlend_Basic(t *testing.T) {
	assert := assert.New(t)

	op := NewBlend()
	assert.Equal(Normal, op.Get())
	err := op.Set("blend_mode_not_supported")
	assert.Error(err)
	assert.NoError(op.Set(Darken))
	assert.Equal(Darken, op.Get())
	assert.NoError(op.Set(Lighten))
	assert.Equal(Lighten, op.Get())

	var nilBlend *Blend
	assert.Equal(Normal, nilBlend.Get())
}

func TestBlend_Mix(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		mode   BlendMode
		cb, cs float64
		want   float64
	}{
		{Normal, 0.2, 0.7, 0.7},
		{Darken, 0.2, 0.7, 0.2},
		{Lighten, 0.2, 0.7, 0.7},
		{Multiply, 0.5, 0.5, 0.25},
		{Screen, 0.5, 0.5, 0.75},
		{Overlay, 0.25, 0.5, 0.25},
		{Overlay, 0.75, 0.5, 0.75},
	}
	for _, c := range cases {
		b := NewBlend()
		assert.NoError(b.Set(c.mode))
		assert.InDelta(c.want, b.Mix(c.cb, c.cs), 1e-9, string(c.mode))
	}
}
