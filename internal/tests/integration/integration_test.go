// Package integration holds tests that need a git binary, a running git
// daemon, or network access.
package integration

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

// freeport returns a loopback port that was free a moment ago, for a server
// started right after. Nothing stops another process from taking it first.
func freeport(t *testing.T) (port int, addr string) {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	a, ok := l.Addr().(*net.TCPAddr)
	require.True(t, ok)

	require.NoError(t, l.Close())

	return a.Port, a.String()
}
