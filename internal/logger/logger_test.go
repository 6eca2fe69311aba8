package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebugOnlyWhenVerbose(t *testing.T) {
	defer Reset()
	var buf bytes.Buffer
	SetOutput(&buf)

	Debug("hidden %d", 1)
	assert.Empty(t, buf.String())

	SetVerbose(true)
	assert.True(t, IsVerbose())
	Debug("test message %s", "arg")
	Info("n=%d", 2)
	assert.Equal(t, "[DEBUG] test message arg\n[INFO] n=2\n", buf.String())
}

func TestSection(t *testing.T) {
	defer Reset()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)
	Section("Pairing")
	assert.Equal(t, "\n=== Pairing ===\n", buf.String())
}

func TestWarnfHonoursQuiet(t *testing.T) {
	defer Reset()
	var buf bytes.Buffer
	SetOutput(&buf)

	Warnf("missing %s", "nhmmer")
	assert.Equal(t, "WARN: missing nhmmer\n", buf.String())

	buf.Reset()
	SetQuiet(true)
	Warnf("missing %s", "nhmmer")
	assert.Empty(t, buf.String())
}
