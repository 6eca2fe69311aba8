package cliutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPositionals(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.tab")
	b := filepath.Join(dir, "b.tab")
	require.NoError(t, os.WriteFile(a, nil, 0o644))
	require.NoError(t, os.WriteFile(b, nil, 0o644))

	got, err := ExpandPositionals([]string{b, filepath.Join(dir, "*.tab")})
	require.NoError(t, err)
	assert.Equal(t, []string{b, a}, got)
}

func TestExpandPositionalsNoMatch(t *testing.T) {
	_, err := ExpandPositionals([]string{filepath.Join(t.TempDir(), "*.bed")})
	assert.ErrorContains(t, err, "no input matched")
}
