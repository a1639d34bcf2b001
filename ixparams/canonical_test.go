package ixparams

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	auto := []string{"format", "compress"}
	tests := []struct {
		name   string
		params Params
		expect Params
	}{
		{
			name:   "long to short",
			params: Params{"background-color": "fff", "image-width": 100, "crop-mode": "faces"},
			expect: Params{"bg": "fff", "w": 100, "crop": "faces"},
		},
		{
			name:   "short keys pass through",
			params: Params{"bg": "fff", "w": 100, "crop": "faces"},
			expect: Params{"bg": "fff", "w": 100, "crop": "faces"},
		},
		{
			name:   "unknown keys pass through",
			params: Params{"foo-bar": "baz", "txt64": "hello"},
			expect: Params{"foo-bar": "baz", "txt64": "hello"},
		},
		{
			name:   "self aliases",
			params: Params{"hue": 10, "faces": 1, "blend": "abc"},
			expect: Params{"hue": 10, "faces": 1, "blend": "abc"},
		},
		{
			name:   "values untouched",
			params: Params{"auto-features": auto, "quality": "80"},
			expect: Params{"auto": auto, "q": "80"},
		},
		{
			name:   "short key wins over long key",
			params: Params{"width": 100, "w": 200},
			expect: Params{"w": 200},
		},
		{
			name:   "deterministic long key collision",
			params: Params{"width": 100, "image-width": 300},
			expect: Params{"w": 100},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 10; i++ {
				assert.Equal(t, tt.expect, Canonicalize(tt.params))
			}
		})
	}
	assert.Nil(t, Canonicalize(nil))
}

func TestCanonicalizeIdempotent(t *testing.T) {
	p := Params{"unknown": "x"}
	for long := range Aliases {
		p[long] = long
	}
	once := Canonicalize(p)
	assert.Equal(t, once, Canonicalize(once))

	for _, short := range Aliases {
		_, ok := once[short]
		assert.True(t, ok, short)
	}
}

func TestAliasesFixedPoints(t *testing.T) {
	for long, short := range Aliases {
		if alias, ok := Aliases[short]; ok {
			assert.Equal(t, short, alias, "short key %s of %s must not be remapped", short, long)
		}
	}
}
