package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, false)
	log.Debug("hidden")
	log.Info("shown", "provider", "aws")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown provider=aws")

	buf.Reset()
	log = newLogger(&buf, true)
	log.Debug("visible")
	assert.Contains(t, buf.String(), "level=DEBUG msg=visible")
}
