package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return stdout.String(), stderr.String(), err
}

func TestCLISearch(t *testing.T) {
	out, logs, err := runCLI(t, "hi", "60", "-r", "-I", "14", "-i", "16", "-w", "2", "--full-program", "--verify")
	require.NoError(t, err)

	blocks := strings.Split(strings.TrimSpace(out), "\n\n")
	require.NotEmpty(t, blocks)
	last := strings.Split(blocks[len(blocks)-1], "\n")
	require.Len(t, last, 5)
	assert.True(t, strings.HasPrefix(last[0], "28: "), last[0])
	assert.Len(t, last[4], 28)
	assert.Contains(t, logs, "init-len")
	assert.Contains(t, logs, "run=")
}

func TestCLIRejectsBadBounds(t *testing.T) {
	_, _, err := runCLI(t, "hi", "-I", "20", "-i", "15")
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, _, err = runCLI(t, "hi", "zero")
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, _, err = runCLI(t)
	require.Error(t, err)
}

func TestCLIConfigFileWithOverrides(t *testing.T) {
	path := writeFile(t, "bounds.yaml", "minInit: 14\nmaxInit: 15\nrollingLimit: true\nworkers: 2\n")
	out, _, err := runCLI(t, "hi", "60", "--config", path, "-i", "16")
	require.NoError(t, err)
	// only length 16 holds a solution under 60, so the flag must have won
	assert.Contains(t, out, "28: ")

	out, _, err = runCLI(t, "hi", "60", "--config", path)
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(out))
}
