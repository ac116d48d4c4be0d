package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZerologLogger_JSONOutput(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("LOG_LEVEL", "")
	var buf bytes.Buffer
	log := newZerologLogger("store", &buf)

	log.Infof("schedule for %s persisted", "2024-01-15")
	out := buf.String()
	assert.Contains(t, out, `"component":"store"`)
	assert.Contains(t, out, `"level":"info"`)
	assert.Contains(t, out, "schedule for 2024-01-15 persisted")
}

func TestZerologLogger_DefaultLevelSuppressesDebug(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("LOG_LEVEL", "")
	var buf bytes.Buffer
	log := newZerologLogger("solver", &buf)

	log.Debugf("stage output: %s", "ok")
	assert.Empty(t, buf.String())

	log.Warnf("stage slow")
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestZerologLogger_LevelFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("LOG_LEVEL", "error")
	var buf bytes.Buffer
	log := newZerologLogger("api", &buf)

	log.Infof("listening")
	log.Warnf("slow request")
	assert.Empty(t, buf.String())

	log.Errorf("request failed")
	assert.Contains(t, buf.String(), "request failed")
}

func TestZerologLogger_DebugwFields(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("LOG_LEVEL", "debug")
	var buf bytes.Buffer
	log := newZerologLogger("orchestrator", &buf)

	log.Debugw("run finished", map[string]any{"planning_date": "2024-01-15", "trains": 20})
	out := buf.String()
	assert.Contains(t, out, `"planning_date":"2024-01-15"`)
	assert.Contains(t, out, `"trains":20`)
	assert.Contains(t, out, "run finished")
}

func TestZerologLogger_ConsoleModeInDev(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("LOG_LEVEL", "")
	var buf bytes.Buffer
	log := newZerologLogger("service", &buf)

	log.Infof("listening on :8080")
	// Console output is human-readable, not a JSON document.
	assert.False(t, strings.HasPrefix(strings.TrimSpace(buf.String()), "{"))
	assert.Contains(t, buf.String(), "listening on :8080")
}
