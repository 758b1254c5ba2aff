package agentlaunch

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWaitForDBusProxySucceedsOnceListening(t *testing.T) {
	dir := t.TempDir()
	sockPath := dir + "/proxy.sock"

	ln, err := net.Listen("unix", sockPath)
	require.NoError(t, err)
	defer ln.Close()

	require.NoError(t, WaitForDBusProxy(sockPath))
}

func TestWaitForDBusProxyFailsWhenNeverListening(t *testing.T) {
	dir := t.TempDir()
	// 200 * 500us = 100ms total, cheap enough to run against a
	// guaranteed-absent socket path.
	err := WaitForDBusProxy(dir + "/missing.sock")
	require.Error(t, err)
}
