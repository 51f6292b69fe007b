package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Phantom1003/ptm/core"
)

func TestEncodeDecodeTargetRoundTripsTask(t *testing.T) {
	orig := core.NewTaskTarget("build")
	decoded, err := decodeTarget(encodeTarget(orig))
	assert.NoError(t, err)
	assert.Equal(t, orig, decoded)
}

func TestEncodeDecodeTargetRoundTripsFile(t *testing.T) {
	orig, err := core.NewFileTarget("out/bin")
	assert.NoError(t, err)
	decoded, err := decodeTarget(encodeTarget(orig))
	assert.NoError(t, err)
	assert.Equal(t, orig, decoded)
}

func TestDecodeTargetRejectsMalformedInput(t *testing.T) {
	_, err := decodeTarget("no-colon-here")
	assert.Error(t, err)
}

func TestDecodeTargetRejectsUnknownKind(t *testing.T) {
	_, err := decodeTarget("bogus:name")
	assert.Error(t, err)
}

func TestNewReexecLauncherBuildsExpectedCommand(t *testing.T) {
	launch := newReexecLauncher("/usr/bin/ptm", "/repo/build.ptm", ".ptmconfig")
	cmd := launch(core.NewTaskTarget("build"), 4)
	assert.Equal(t, "/usr/bin/ptm", cmd.Path)
	assert.Contains(t, cmd.Args, "--run-recipe")
	assert.Contains(t, cmd.Args, "task:build")
	assert.Contains(t, cmd.Args, "--jobs")
	assert.Contains(t, cmd.Args, "4")
}
