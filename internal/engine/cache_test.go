package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentCache(t *testing.T) {
	t.Parallel()

	c := newContentCache()
	assert.True(t, c.changed("a.go", []byte("package a")))
	assert.False(t, c.changed("a.go", []byte("package a")))
	assert.True(t, c.changed("b.go", []byte("package a")), "files are tracked separately")
	assert.True(t, c.changed("a.go", []byte("package a\n")))

	c.forget("a.go")
	assert.True(t, c.changed("a.go", []byte("package a\n")))
}
