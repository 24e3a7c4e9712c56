// Package debugserver exposes the gin-based health/metrics/debug HTTP
// surface operators use alongside a running stream, grounded on the
// teacher's cmd/api.go (gin.New, gin.Logger, gin.Recovery, a /health
// route), generalized from the teacher's full query API to the handful
// of operator-facing routes this module needs.
package debugserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StreamSnapshot is the point-in-time state GET /debug/stream reports.
type StreamSnapshot struct {
	Label         string    `json:"label"`
	BufferBytes   int       `json:"bufferBytes"`
	BufferBlocks  int       `json:"bufferBlocks"`
	FinalizedHead uint64    `json:"finalizedHead"`
	LastBlock     uint64    `json:"lastBlock"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Registry tracks the active stream snapshots the debug server reports.
// Callers update it from their consumer loop; the server only reads it.
type Registry struct {
	mu        sync.RWMutex
	snapshots map[string]StreamSnapshot
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{snapshots: make(map[string]StreamSnapshot)}
}

// Update records the latest snapshot for a named stream.
func (r *Registry) Update(snap StreamSnapshot) {
	snap.UpdatedAt = time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[snap.Label] = snap
}

func (r *Registry) list() []StreamSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]StreamSnapshot, 0, len(r.snapshots))
	for _, s := range r.snapshots {
		out = append(out, s)
	}
	return out
}

// New builds the gin engine serving /health, /metrics and /debug/stream.
func New(registry *Registry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/debug/stream", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"streams": registry.list()})
	})

	return r
}
