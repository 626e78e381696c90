package sync

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/Werneck0live/pipeline-crm/internal/models"
)

// Session is the explicit navigation context for one partner: the loaded
// client list, in load order, and one WorkingCopy per client. Callers pass
// it around instead of keeping selections in ambient state.
type Session struct {
	partner string
	store   Store
	log     *slog.Logger

	unconditional atomic.Bool
	listStale     atomic.Bool

	group singleflight.Group

	mu     sync.RWMutex
	loaded bool
	order  []*WorkingCopy           // load order, newest first
	byID   map[string]*WorkingCopy // every copy ever handed out
}

func NewSession(store Store, partner string) *Session {
	return &Session{
		partner: partner,
		store:   store,
		log:     slog.Default().With("cmp", "sync", "partner", partner),
		byID:    make(map[string]*WorkingCopy),
	}
}

func (s *Session) Partner() string { return s.partner }

// SetUnconditional switches commits to last-writer-wins: no revision is
// sent, so a stale copy silently overwrites newer stored state. Only safe
// with a single writer.
func (s *Session) SetUnconditional(v bool) { s.unconditional.Store(v) }

func (s *Session) Unconditional() bool { return s.unconditional.Load() }

// ListStale reports that clients were created or deleted for the partner
// since the last Load.
func (s *Session) ListStale() bool { return s.listStale.Load() }

// Load fetches the partner's clients and replaces the working set.
// Concurrent calls share one fetch. Copies already handed out for a client
// are refreshed in place, so holders see the new state and a new
// generation; copies whose client vanished are marked Gone.
func (s *Session) Load(ctx context.Context) ([]*WorkingCopy, error) {
	_, err, shared := s.group.Do("load", func() (any, error) {
		recs, err := s.store.ListForPartner(ctx, s.partner)
		if err != nil {
			return nil, err
		}
		s.install(recs)
		return nil, nil
	})
	if err != nil {
		s.log.Warn("session_load_failed", "err", err)
		return nil, err
	}
	if shared {
		s.log.Debug("session_load_shared")
	}
	return s.Copies(), nil
}

func (s *Session) install(recs []models.ClientRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(recs))
	order := make([]*WorkingCopy, 0, len(recs))
	for _, rec := range recs {
		seen[rec.ID] = true
		if wc, ok := s.byID[rec.ID]; ok {
			wc.reset(rec)
			order = append(order, wc)
			continue
		}
		wc := newWorkingCopy(s.store, rec.Clone(), s.Unconditional, s.log)
		s.byID[rec.ID] = wc
		order = append(order, wc)
	}
	for id, wc := range s.byID {
		if !seen[id] {
			wc.gone.Store(true)
			wc.MarkStale()
			delete(s.byID, id)
		}
	}
	s.order = order
	s.loaded = true
	s.listStale.Store(false)
	s.log.Info("session_loaded", "clients", len(order))
}

// Copies returns the working set in load order.
func (s *Session) Copies() []*WorkingCopy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*WorkingCopy(nil), s.order...)
}

func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Open returns the working copy at a load-time position without checking
// that the list is still what the caller saw. Prefer Ref and Resolve when
// the position was cached.
func (s *Session) Open(pos int) (*WorkingCopy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, ErrNotLoaded
	}
	if pos < 0 || pos >= len(s.order) {
		return nil, ErrStalePosition
	}
	return s.order[pos], nil
}

// Ref captures position and id together for later re-validation.
func (s *Session) Ref(pos int) (ClientRef, error) {
	wc, err := s.Open(pos)
	if err != nil {
		return ClientRef{}, err
	}
	return ClientRef{Position: pos, ID: wc.ID()}, nil
}

// Lookup finds the working copy for a client id.
func (s *Session) Lookup(id string) (*WorkingCopy, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wc, ok := s.byID[id]
	return wc, ok
}

// Resolve re-validates ref against the current list. It returns the copy
// and the ref updated to the client's current position; a client that is
// no longer listed yields a NotFoundError.
func (s *Session) Resolve(ref ClientRef) (*WorkingCopy, ClientRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, ref, ErrNotLoaded
	}
	if ref.ID == "" {
		if ref.Position < 0 || ref.Position >= len(s.order) {
			return nil, ref, ErrStalePosition
		}
		wc := s.order[ref.Position]
		return wc, ClientRef{Position: ref.Position, ID: wc.ID()}, nil
	}
	if ref.Position >= 0 && ref.Position < len(s.order) && s.order[ref.Position].ID() == ref.ID {
		return s.order[ref.Position], ref, nil
	}
	for i, wc := range s.order {
		if wc.ID() == ref.ID {
			return wc, ClientRef{Position: i, ID: ref.ID}, nil
		}
	}
	return nil, ref, models.NotFound("client", ref.ID)
}
