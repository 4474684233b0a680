package log

import (
	"bytes"
	"os"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	defer SetLevel(InfoLevel)

	SetLevel(InfoLevel)
	Debugf("hidden %d", 1)
	assert.Empty(t, buf.String())
	assert.False(t, IsLevelEnabled(DebugLevel))

	SetLevel(DebugLevel)
	Debugf("shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")

	buf.Reset()
	WithFields(map[string]any{"campaign": "urn:c"}).Info("stored")
	assert.Contains(t, buf.String(), "campaign=")
	assert.Contains(t, buf.String(), "stored")
}

func TestSetFormat(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	defer SetFormat("text")

	require.NoError(t, SetFormat("json"))
	WithFields(map[string]any{"survey": "daily"}).Info("reconciled")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "daily", line["survey"])
	assert.Equal(t, "reconciled", line["msg"])
	assert.Equal(t, "info", line["level"])

	assert.EqualError(t, SetFormat("xml"), `unknown log format "xml"`)
}
