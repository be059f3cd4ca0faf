package logger

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_ErrorEventCarriesServiceAndStack(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	log := New("pulseboard-test")
	log.Error().Stack().Err(errors.New("boom")).Msg("degraded")

	_ = w.Close()
	raw, _ := io.ReadAll(r)
	_ = r.Close()

	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.NotEmpty(t, lines)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &payload))
	require.Equal(t, "pulseboard-test", payload["service"])
	require.Equal(t, "error", payload["level"])
	require.Contains(t, payload, "stack")
}
