package sync

import (
	"context"

	"github.com/Werneck0live/pipeline-crm/internal/models"
)

// NoEdit is the editor's "not editing anything" position.
const NoEdit = models.NoIndex

// RequirementEditor tracks which requirement of one working copy is being
// edited. The position is cleared after a successful save or a cancel and
// is never carried across a reload or another save of the copy.
type RequirementEditor struct {
	wc    *WorkingCopy
	index int
	key   string
	gen   uint64
}

func NewRequirementEditor(wc *WorkingCopy) *RequirementEditor {
	return &RequirementEditor{wc: wc, index: NoEdit}
}

// Editing returns the position being edited, or NoEdit.
func (e *RequirementEditor) Editing() int { return e.index }

// Begin starts editing the requirement at pos of the copy's current state.
func (e *RequirementEditor) Begin(pos int) (models.Requirement, error) {
	snap := e.wc.Snapshot()
	r, i, err := snap.Requirement(models.At(pos))
	if err != nil {
		return models.Requirement{}, err
	}
	e.index = i
	e.key = r.Key
	e.gen = e.wc.Generation()
	return *r, nil
}

func (e *RequirementEditor) Cancel() {
	e.index = NoEdit
	e.key = ""
	e.gen = 0
}

// Save commits r. With nothing being edited r is appended as a new
// requirement; otherwise it replaces the one passed to Begin. A copy that
// was reloaded or saved since Begin yields ErrStaleEdit and the edit stays
// open so the caller can cancel. A failed commit also keeps it open.
func (e *RequirementEditor) Save(ctx context.Context, r models.Requirement) (models.ItemRef, error) {
	var cmd Command = AddRequirement{Requirement: r}
	if e.index != NoEdit {
		if e.wc.Generation() != e.gen {
			return models.ItemRef{Index: NoEdit}, ErrStaleEdit
		}
		cmd = EditRequirement{Ref: models.ItemRef{Key: e.key, Index: e.index}, Requirement: r}
	}
	refs, err := e.wc.ApplyAndCommit(ctx, cmd)
	if err != nil {
		return models.ItemRef{Index: NoEdit}, err
	}
	e.Cancel()
	return refs[0], nil
}
