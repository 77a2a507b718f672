package logging_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-kit/log/level"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bantra/gardeparents/logging"
)

func TestNewWithWriter_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Component(logging.NewWithWriter(&buf, "warn"), "repository")

	level.Info(logger).Log("msg", "hidden")
	level.Error(logger).Log("msg", "failed to list children")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "failed to list children", entry["msg"])
	assert.Equal(t, "repository", entry["component"])
	assert.Equal(t, "error", entry["level"])
	assert.NotEmpty(t, entry["ts"])
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	handler := logging.RequestLogger(logging.NewWithWriter(&buf, "info"))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
		}),
	)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/care-periods", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "POST", entry["method"])
	assert.Equal(t, "/api/care-periods", entry["uri"])
	assert.Equal(t, float64(http.StatusConflict), entry["status"])
	assert.Equal(t, "info", entry["level"])
}
