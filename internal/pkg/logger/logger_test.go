package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONOutputCarriesService(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("api", "json", "debug", &buf)

	log.WithField("report_id", "r1").Info("report created")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "api", line["service"])
	assert.Equal(t, "r1", line["report_id"])
	assert.Equal(t, "report created", line["msg"])
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	log := NewWithOutput("web", "text", "loud", &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, log.Logger.GetLevel())
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("web", "text", "info", &buf)
	log.Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "service=web")
}
