package sync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Werneck0live/pipeline-crm/internal/models"
	"github.com/Werneck0live/pipeline-crm/internal/repository"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func seedClients(t *testing.T, mem *repository.Memory, partner string, names ...string) []*models.ClientRecord {
	t.Helper()
	out := make([]*models.ClientRecord, 0, len(names))
	for _, n := range names {
		c, err := mem.Create(context.Background(), partner, models.ClientFields{ClientName: n})
		require.NoError(t, err)
		out = append(out, c)
	}
	return out
}

func loadOne(t *testing.T, s *Session) *WorkingCopy {
	t.Helper()
	copies, err := s.Load(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, copies)
	return copies[0]
}

// failingStore fails every write.
type failingStore struct {
	Store
	err error
}

func (f failingStore) Replace(context.Context, string, models.ClientPatch) (*models.ClientRecord, error) {
	return nil, f.err
}

var errDown = &models.TransportError{Op: "update client", Err: errors.New("connection refused")}

// gatedStore blocks writes until released and records how many ran at once.
type gatedStore struct {
	Store
	gate     chan struct{}
	entered  chan struct{}
	inflight atomic.Int32
	maxSeen  atomic.Int32
}

func newGatedStore(inner Store) *gatedStore {
	return &gatedStore{Store: inner, gate: make(chan struct{}), entered: make(chan struct{}, 16)}
}

func (g *gatedStore) Replace(ctx context.Context, id string, p models.ClientPatch) (*models.ClientRecord, error) {
	n := g.inflight.Add(1)
	defer g.inflight.Add(-1)
	for {
		m := g.maxSeen.Load()
		if n <= m || g.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	g.entered <- struct{}{}
	<-g.gate
	return g.Store.Replace(ctx, id, p)
}

// countingStore counts list calls and holds them until released.
type countingStore struct {
	Store
	mu      sync.Mutex
	calls   int
	release chan struct{}
}

func (c *countingStore) ListForPartner(ctx context.Context, partner string) ([]models.ClientRecord, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	<-c.release
	return c.Store.ListForPartner(ctx, partner)
}

func (c *countingStore) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func slogDiscard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }
