//go:build !linux && !darwin

package http

import (
	"context"
	"net"
)

// SO_REUSEPORT is not portable; the flag is ignored here.
func listen(ctx context.Context, addr string, _ bool) (net.Listener, error) {
	var lc net.ListenConfig
	return lc.Listen(ctx, "tcp", addr)
}
