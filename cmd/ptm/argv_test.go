package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseArgvFlagConsumesValue(t *testing.T) {
	d := parseArgv([]string{"-name", "value"})
	assert.Equal(t, "value", d["-name"])
}

func TestParseArgvFlagFollowedByFlagIsBoolean(t *testing.T) {
	d := parseArgv([]string{"-verbose", "-debug"})
	assert.Equal(t, true, d["-verbose"])
	assert.Equal(t, true, d["-debug"])
}

func TestParseArgvTrailingFlagIsBoolean(t *testing.T) {
	d := parseArgv([]string{"-x"})
	assert.Equal(t, true, d["-x"])
}

func TestParseArgvSkipsBarePositionalTokens(t *testing.T) {
	d := parseArgv([]string{"positional", "-flag", "v"})
	assert.Equal(t, "v", d["-flag"])
	assert.Len(t, d, 1)
}

func TestArgvEnvProducesValidAssignment(t *testing.T) {
	d := parseArgv([]string{"-name", "value"})
	env, err := d.env()
	assert.NoError(t, err)
	assert.Contains(t, env, "PTM_ARGV_JSON=")
	assert.Contains(t, env, `"-name":"value"`)
}
