package portalclient

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/thirdweb-dev/portal-client/internal/query"
)

// cannedResponse is one queued OpenStream reply for fakeTransport.
type cannedResponse struct {
	status int
	lines  []string // each becomes one NDJSON line
}

// fakeTransport is a portalclient.Transport stand-in for tests,
// replacing httptransport the way spec §6 intends the core to be
// testable against a fake.
type fakeTransport struct {
	mu        sync.Mutex
	responses []cannedResponse
	height    uint64
	openCalls int
}

func (f *fakeTransport) enqueue(r cannedResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, r)
}

func (f *fakeTransport) Height(ctx context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.height, nil
}

func (f *fakeTransport) OpenStream(ctx context.Context, req query.WireRequest) (io.ReadCloser, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openCalls++

	if len(f.responses) == 0 {
		return io.NopCloser(strings.NewReader("")), 204, nil
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]

	body := strings.Join(resp.lines, "\n")
	if len(resp.lines) > 0 {
		body += "\n"
	}
	return io.NopCloser(strings.NewReader(body)), resp.status, nil
}

// blockLine renders a minimal valid block line for number n.
func blockLine(n uint64) string {
	return fmt.Sprintf(`{"header":{"number":%d,"hash":"0x%064d","parentHash":"0x%064d"}}`, n, n, n-1)
}
