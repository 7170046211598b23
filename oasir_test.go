package oasir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersion(t *testing.T) {
	assert.Equal(t, "dev", Version())
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	assert.True(t, strings.HasPrefix(ua, "oasir/"))
	assert.Contains(t, ua, Version())
}

func TestNopLoggerWith(t *testing.T) {
	var l Logger = NopLogger{}
	assert.Equal(t, l, l.With("key", "value"))
}

func TestSlogAdapterNilDefault(t *testing.T) {
	a := NewSlogAdapter(nil)
	assert.NotNil(t, a)
	// With must return an independent adapter.
	b := a.With("component", "resolver")
	assert.NotSame(t, a, b)
}
