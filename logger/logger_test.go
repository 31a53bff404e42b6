package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("loud")
	require.Error(t, err)

	lggr, err := New("debug")
	require.NoError(t, err)
	assert.NotNil(t, lggr)
}

func TestObservedCapturesNamedFields(t *testing.T) {
	lggr, logs := TestObserved(t, zapcore.WarnLevel)

	lggr.Named("store").With("site_id", "site_1").Warnw("slow query", "ms", 250)
	lggr.Infow("ignored below level")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "slow query", entries[0].Message)
	assert.Equal(t, "store", entries[0].LoggerName)
	assert.Equal(t, "site_1", entries[0].ContextMap()["site_id"])
}
