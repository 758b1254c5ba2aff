package eventlog

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesTimestampedLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pacwrap.log")

	require.NoError(t, reinitializeForTest("aggregator", path))
	defer Close()

	require.NoError(t, Log("container b's refresh"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	line := strings.TrimSpace(string(data))
	assert.True(t, strings.Contains(line, "[aggregator]"))
	assert.True(t, strings.HasSuffix(line, "container b's refresh"))
	assert.True(t, strings.HasPrefix(line, "["))
}

func TestLogBeforeInitializeIsNoop(t *testing.T) {
	globalLogger = nil
	once = sync.Once{}
	assert.NoError(t, Log("should not panic"))
	assert.False(t, IsInitialized())
}
