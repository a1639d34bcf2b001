package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringSliceFlag(t *testing.T) {
	var f StringSliceFlag
	assert.NoError(t, f.Set("sizesAttribute, fallbackImage,,"))
	assert.Equal(t, StringSliceFlag{"sizesAttribute", "fallbackImage"}, f)
	assert.Equal(t, "sizesAttribute,fallbackImage", f.String())
	assert.Equal(t, []string{"sizesAttribute", "fallbackImage"}, f.Get())

	assert.NoError(t, f.Set(""))
	assert.Empty(t, f)
}
