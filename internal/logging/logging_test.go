package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tphakala/raextract/internal/logging"
)

func TestInitAndForComponent(t *testing.T) {
	logging.Init(t.TempDir())
	require.True(t, logging.IsInitialized())

	logger := logging.ForComponent("writer")
	require.NotNil(t, logger)
}

func TestSetOutputWritesJSON(t *testing.T) {
	logging.Init(t.TempDir())

	var structuredBuf, humanBuf bytes.Buffer
	require.NoError(t, logging.SetOutput(&structuredBuf, &humanBuf))

	logging.ForComponent("classifier").Info("probe timed out", "path", "/tmp/a.ogg")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(structuredBuf.Bytes(), &decoded))
	require.Equal(t, "probe timed out", decoded["msg"])
	require.Equal(t, "classifier", decoded["component"])
}

func TestSetOutputRejectsNil(t *testing.T) {
	err := logging.SetOutput(nil, &bytes.Buffer{})
	require.Error(t, err)
}
