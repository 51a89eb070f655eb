package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level   string
		want    int
		wantErr bool
	}{
		{level: "", want: 0},
		{level: "info", want: 0},
		{level: "DEBUG", want: DEBUG},
		{level: "trace", want: TRACE},
		{level: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			got, err := ParseLevel(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONLoggerVerbosity(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger("debug", FormatJSON, &buf)
	require.NoError(t, err)

	log.Info("kept", "theta", 0.5)
	log.V(DEBUG).Info("kept too")
	log.V(TRACE).Info("dropped")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, 0.5, entry["theta"])
}

func TestPrettyLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger("info", FormatPretty, &buf)
	require.NoError(t, err)

	log.Info("hello", "heuristic", "grid")
	log.V(DEBUG).Info("hidden")

	out := buf.String()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "grid")
	assert.NotContains(t, out, "hidden")
}

func TestUnknownFormat(t *testing.T) {
	_, err := NewLogger("info", "xml", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestGlobalLogger(t *testing.T) {
	l := NewTestLogger()
	assert.Equal(t, l, Log())
}
