package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("test", &buf, zerolog.DebugLevel)
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")

	out := buf.String()
	assert.Contains(t, out, `"component":"test"`)
	assert.Contains(t, out, `"message":"info test"`)
	assert.Contains(t, out, `"k":1`)
	assert.Contains(t, out, `"level":"warn"`)
}

func TestNewWithWriterHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("quiet", &buf, zerolog.WarnLevel)
	l.Infof("hidden")
	l.Warnf("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestConfigure(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Configure("debug", "json", &buf))
	t.Cleanup(func() { _ = Configure("info", "console", os.Stderr) })

	New("cfg").Debugf("hello")
	assert.Contains(t, buf.String(), `"message":"hello"`)

	assert.Error(t, Configure("loud", "json", nil))
	assert.Error(t, Configure("info", "xml", nil))
}

func TestNop(t *testing.T) {
	var l Logger = Nop{}
	l.Infof("nothing")
	l.Debugw("nothing", nil)
}
