package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWithWriterEmitsStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("certledger", &buf)

	logger.Info("ledger opened", "namespace", "cert/")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "ledger opened", line["message"])
	require.Equal(t, "INFO", line["severity"])
	require.Equal(t, "certledger", line["component"])
	require.Equal(t, "cert/", line["namespace"])
	require.Contains(t, line, "timestamp")
}
