package sync

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/Werneck0live/pipeline-crm/internal/models"
)

// WorkingCopy is the local, mutable state of one client record.
//
// Apply changes the copy only. Commit sends the whole copy to the store;
// commits on one copy run one at a time and mutations attempted while a
// commit is outstanding fail with ErrCommitInFlight. A failed commit leaves
// the copy exactly as it was.
type WorkingCopy struct {
	store         Store
	unconditional func() bool
	log           *slog.Logger

	commitMu sync.Mutex // queues commits

	mu         sync.Mutex // guards rec, gen, committing, reloadRev
	rec        models.ClientRecord
	gen        uint64
	committing bool
	reloadRev  int64 // highest revision a reload saw during the commit

	stale atomic.Bool
	gone  atomic.Bool
}

func newWorkingCopy(store Store, rec models.ClientRecord, unconditional func() bool, log *slog.Logger) *WorkingCopy {
	if unconditional == nil {
		unconditional = func() bool { return false }
	}
	if log == nil {
		log = slog.Default()
	}
	rec.Normalize()
	return &WorkingCopy{store: store, rec: rec, unconditional: unconditional, log: log}
}

// NewWorkingCopy wraps rec outside of a session. Commits are conditional on
// rec's revision.
func NewWorkingCopy(store Store, rec models.ClientRecord) *WorkingCopy {
	return newWorkingCopy(store, rec.Clone(), nil, nil)
}

func (w *WorkingCopy) ID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rec.ID
}

func (w *WorkingCopy) Revision() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rec.Revision
}

// Generation changes whenever the copy is replaced wholesale: after a
// successful commit and after a reload.
func (w *WorkingCopy) Generation() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.gen
}

// Snapshot returns a deep copy of the current local state.
func (w *WorkingCopy) Snapshot() models.ClientRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rec.Clone()
}

// Stale reports that the store is known to hold a newer revision, or that
// the record was deleted, since this copy was loaded.
func (w *WorkingCopy) Stale() bool { return w.stale.Load() }

// Gone reports that the record was deleted or dropped from the partner's
// list on the last reload.
func (w *WorkingCopy) Gone() bool { return w.gone.Load() }

func (w *WorkingCopy) MarkStale() { w.stale.Store(true) }

// Apply validates cmd and runs it against the local copy. It returns the
// address of an appended item, or a NoIndex ref for other commands. On
// error the copy is unchanged.
func (w *WorkingCopy) Apply(cmd Command) (models.ItemRef, error) {
	if err := cmd.Validate(); err != nil {
		return models.ItemRef{Index: models.NoIndex}, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.committing {
		return models.ItemRef{Index: models.NoIndex}, ErrCommitInFlight
	}
	next := w.rec.Clone()
	ref, err := cmd.apply(&next)
	if err != nil {
		return models.ItemRef{Index: models.NoIndex}, err
	}
	w.rec = next
	return ref, nil
}

// Commit writes the whole copy to the store and adopts the stored result.
func (w *WorkingCopy) Commit(ctx context.Context) error {
	_, err := w.ApplyAndCommit(ctx)
	return err
}

// ApplyAndCommit applies cmds to a scratch copy and commits it. The local
// copy only changes if the store accepts the write, so a rejected save
// leaves nothing half applied. The returned refs match cmds.
func (w *WorkingCopy) ApplyAndCommit(ctx context.Context, cmds ...Command) ([]models.ItemRef, error) {
	for _, c := range cmds {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}

	w.commitMu.Lock()
	defer w.commitMu.Unlock()

	w.mu.Lock()
	next := w.rec.Clone()
	refs := make([]models.ItemRef, 0, len(cmds))
	for _, c := range cmds {
		ref, err := c.apply(&next)
		if err != nil {
			w.mu.Unlock()
			return nil, err
		}
		refs = append(refs, ref)
	}
	w.committing = true
	w.mu.Unlock()

	patch := models.FullPatch(next)
	if w.unconditional() {
		patch.ExpectedRevision = nil
	}
	saved, err := w.store.Replace(ctx, next.ID, patch)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.committing = false
	seen := w.reloadRev
	w.reloadRev = 0
	if err != nil {
		w.log.Warn("client_commit_failed", "id", next.ID, "revision", next.Revision, "err", err)
		return nil, err
	}
	w.adoptLocked(*saved)
	if seen > saved.Revision {
		w.stale.Store(true)
	}
	w.log.Debug("client_committed", "id", saved.ID, "revision", saved.Revision)
	return refs, nil
}

func (w *WorkingCopy) adoptLocked(rec models.ClientRecord) {
	rec = rec.Clone()
	rec.Normalize()
	w.rec = rec
	w.gen++
	w.stale.Store(false)
	w.gone.Store(false)
}

// reset installs a freshly loaded record. A copy with a commit outstanding
// keeps its state; the commit's result supersedes the load unless the load
// was newer than what the commit stored.
func (w *WorkingCopy) reset(rec models.ClientRecord) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.committing {
		if rec.Revision > w.reloadRev {
			w.reloadRev = rec.Revision
		}
		w.stale.Store(true)
		return
	}
	w.adoptLocked(rec)
}
