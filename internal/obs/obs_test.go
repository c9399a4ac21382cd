package obs

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoWritesToConfiguredOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	Info("run starting", "files", 3)

	assert.Contains(t, buf.String(), "run starting")
	assert.Contains(t, buf.String(), "files")
}

func TestWithAttachesFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	With("file", "suite.yaml").Info("file starting")

	out := buf.String()
	assert.True(t, strings.Contains(out, "suite.yaml"))
}

func TestConfigureVerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	Configure(true, false)
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	Debug("verbose detail")

	assert.Contains(t, buf.String(), "verbose detail")
}
