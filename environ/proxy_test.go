package environ

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSeedsFromOSEnvironment(t *testing.T) {
	assert.NoError(t, os.Setenv("PTM_TEST_SEED_VAR", "seeded"))
	defer os.Unsetenv("PTM_TEST_SEED_VAR")

	p := New()
	assert.Equal(t, "seeded", p.Get("PTM_TEST_SEED_VAR"))
}

func TestGetMissingReturnsEmpty(t *testing.T) {
	p := New()
	assert.Equal(t, "", p.Get("PTM_DEFINITELY_UNSET_VAR"))
}

func TestLookupReportsPresence(t *testing.T) {
	p := New()
	p.Set("FOO", "bar")
	v, ok := p.Lookup("FOO")
	assert.True(t, ok)
	assert.Equal(t, "bar", v)

	_, ok = p.Lookup("NEVER_SET")
	assert.False(t, ok)
}

func TestSetIsImmediatelyObservable(t *testing.T) {
	p := New()
	p.Set("X", "1")
	assert.Equal(t, "1", p.Get("X"))
	p.Set("X", "2")
	assert.Equal(t, "2", p.Get("X"))
}

func TestEnvironReturnsSortedNameValuePairs(t *testing.T) {
	p := &Proxy{vars: map[string]string{"B": "2", "A": "1"}}
	assert.Equal(t, []string{"A=1", "B=2"}, p.Environ())
}
