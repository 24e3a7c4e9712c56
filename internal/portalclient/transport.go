package portalclient

import (
	"context"
	"io"

	"github.com/thirdweb-dev/portal-client/internal/query"
)

// Transport is the narrow HTTP boundary the streaming client depends on.
// A generic request/response client with retry and streaming-body support
// belongs behind this interface, not inside the core — the default
// implementation lives in internal/portalclient/httptransport, but tests
// substitute a fake.
type Transport interface {
	// Height returns the portal's current finalized height.
	Height(ctx context.Context) (uint64, error)

	// OpenStream issues the finalized-stream request and returns the
	// response body (unread) alongside its HTTP status code. Callers must
	// close the returned body exactly once, on every exit path. A non-nil
	// error means the request itself could not be issued or completed
	// (DNS/connect failure, context cancellation); a request that
	// completed with a non-2xx/204 status is reported via the status
	// code, not an error.
	OpenStream(ctx context.Context, req query.WireRequest) (body io.ReadCloser, status int, err error)
}
